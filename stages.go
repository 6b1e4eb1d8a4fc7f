package jfda

// Fixed properties of the three cascade networks.
const (
	// PNetWindow is the receptive field of the first stage network in pixels.
	PNetWindow = 12
	// PNetStride is the step between two first stage score map cells in pixels.
	PNetStride = 2
	// RNetInput is the side of the second stage input patches.
	RNetInput = 24
	// ONetInput is the side of the third stage input patches.
	ONetInput = 48

	// MaxStages is the number of networks in a complete cascade.
	MaxStages = 3
)

// stage describes the suppression and geometry applied after a stage has been scored.
type stage struct {
	index     int
	input     int // patch side, zero for the fully convolutional first stage
	nmsThresh float32
	nmsMode   NMSMode
	landmarks bool
	square    bool
}

// scaleNMSThresh prunes the proposals of a single pyramid level before they are merged.
const scaleNMSThresh = 0.5

var stages = [MaxStages]stage{
	{index: 1, input: 0, nmsThresh: 0.7, nmsMode: Union, square: true},
	{index: 2, input: RNetInput, nmsThresh: 0.7, nmsMode: Union, square: true},
	{index: 3, input: ONetInput, nmsThresh: 0.7, nmsMode: Min, landmarks: true},
}

// refine applies the post scoring steps of st: suppression, optional landmark
// localisation, regression and optional squaring.
func (st stage) refine(boxes BoxSet) BoxSet {
	boxes = NMS(boxes, st.nmsThresh, st.nmsMode)
	if st.landmarks {
		boxes = LocateLandmarks(boxes)
	}
	boxes = Regress(boxes)
	if st.square {
		boxes = Square(boxes)
	}
	return boxes
}
