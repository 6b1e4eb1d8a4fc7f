package jfda

// ScoreMap is a read only view over one channel of a first stage output.
type ScoreMap struct {
	W, H int
	data []float32
}

// NewScoreMap returns the view of channel c of the first item of t.
func NewScoreMap(t *Tensor, c int) ScoreMap {
	return ScoreMap{W: t.W, H: t.H, data: t.Channel(0, c)}
}

// At returns the value of cell (x, y).
func (m ScoreMap) At(x, y int) float32 {
	return m.data[y*m.W+x]
}

// Proposals converts a first stage output computed at the given pyramid scale into
// candidate boxes in original image coordinates. Every cell whose face probability
// exceeds th becomes a PNetWindow sized window placed every PNetStride pixels of the
// resized image. Cells are visited in row-major order.
func Proposals(prob, reg, lmk *Tensor, scale float64, th float32) BoxSet {
	score := NewScoreMap(prob, 1)

	var regMaps [4]ScoreMap
	for c := range regMaps {
		regMaps[c] = NewScoreMap(reg, c)
	}
	var lmkMaps [10]ScoreMap
	for c := range lmkMaps {
		lmkMaps[c] = NewScoreMap(lmk, c)
	}

	boxes := BoxSet{}
	for y := 0; y < score.H; y++ {
		for x := 0; x < score.W; x++ {
			s := score.At(x, y)
			if s <= th {
				continue
			}
			x1 := float64(PNetStride * x)
			y1 := float64(PNetStride * y)

			b := BoundingBox{
				X1:    float32(x1 / scale),
				Y1:    float32(y1 / scale),
				X2:    float32((x1 + PNetWindow) / scale),
				Y2:    float32((y1 + PNetWindow) / scale),
				Score: s,
			}
			for c := range regMaps {
				b.Reg[c] = regMaps[c].At(x, y)
			}
			for c := range lmkMaps {
				b.Landmarks[c] = lmkMaps[c].At(x, y)
			}
			boxes = append(boxes, b)
		}
	}
	return boxes
}
