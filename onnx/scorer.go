package onnx

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/esimov/jfda"
	ort "github.com/yalue/onnxruntime_go"
)

// Blob names of the stage networks.
const (
	InputName    = "data"
	ProbName     = "prob"
	BBoxName     = "bbox_pred"
	LandmarkName = "landmark_pred"
)

// Loader creates ONNX Runtime backed scorers.
type Loader struct {
	// IntraOpThreads bounds the threads used by a single scoring call; zero keeps the runtime default.
	IntraOpThreads int
}

// Load is a jfda.NetLoader using the default Loader settings.
func Load(definition, weights string) (jfda.Scorer, error) {
	return Loader{}.Load(definition, weights)
}

// Load reads the network graph from definition and, when weights names a different
// non empty file, appends it to the graph. Protobuf messages merge on concatenation,
// so a graph exported without initializers plus an initializer file form one model.
func (l Loader) Load(definition, weights string) (jfda.Scorer, error) {
	if !Initialized() {
		return nil, ErrNotInitialized
	}

	model, err := readModel(definition, weights)
	if err != nil {
		return nil, err
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer options.Destroy()

	if l.IntraOpThreads > 0 {
		if err := options.SetIntraOpNumThreads(l.IntraOpThreads); err != nil {
			return nil, fmt.Errorf("failed to set the thread count: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSessionWithONNXData(
		model,
		[]string{InputName},
		[]string{ProbName, BBoxName, LandmarkName},
		options,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session for %s: %w", definition, err)
	}
	return &Scorer{session: session, name: filepath.Base(definition)}, nil
}

// readModel returns the bytes of the definition followed by the weights, if any.
func readModel(definition, weights string) ([]byte, error) {
	model, err := os.ReadFile(definition)
	if err != nil {
		return nil, fmt.Errorf("unable to read the network definition: %w", err)
	}
	if weights == "" || filepath.Clean(weights) == filepath.Clean(definition) {
		return model, nil
	}

	w, err := os.ReadFile(weights)
	if err != nil {
		return nil, fmt.Errorf("unable to read the network weights: %w", err)
	}
	return bytes.Join([][]byte{model, w}, nil), nil
}

// Scorer scores batches of images with an ONNX Runtime session.
type Scorer struct {
	session *ort.DynamicAdvancedSession
	name    string
}

// Score implements jfda.Scorer.
func (s *Scorer) Score(in *jfda.Tensor) (*jfda.Output, error) {
	input, err := ort.NewTensor(ort.NewShape(int64(in.N), int64(in.C), int64(in.H), int64(in.W)), in.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	// Outputs left nil are allocated by the runtime with the shape it computes.
	outputs := make([]ort.Value, 3)
	defer func() {
		for _, v := range outputs {
			if v != nil {
				v.Destroy()
			}
		}
	}()

	if err := s.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("%s inference failed: %w", s.name, err)
	}

	var out [3]*jfda.Tensor
	for i, v := range outputs {
		t, ok := v.(*ort.Tensor[float32])
		if !ok {
			return nil, fmt.Errorf("%s output %d is not a float32 tensor", s.name, i)
		}
		out[i], err = toTensor(t.GetShape(), t.GetData())
		if err != nil {
			return nil, fmt.Errorf("%s output %d: %w", s.name, i, err)
		}
	}
	return &jfda.Output{Prob: out[0], BBox: out[1], Landmark: out[2]}, nil
}

// Close releases the session.
func (s *Scorer) Close() error {
	if s.session == nil {
		return nil
	}
	err := s.session.Destroy()
	s.session = nil
	return err
}

// toTensor copies a [N,K] or [N,K,H,W] runtime output into a jfda.Tensor.
func toTensor(shape ort.Shape, data []float32) (*jfda.Tensor, error) {
	var t *jfda.Tensor
	switch len(shape) {
	case 2:
		t = jfda.NewTensor(int(shape[0]), int(shape[1]), 1, 1)
	case 4:
		t = jfda.NewTensor(int(shape[0]), int(shape[1]), int(shape[2]), int(shape[3]))
	default:
		return nil, fmt.Errorf("unsupported output shape %v", shape)
	}
	if len(data) != len(t.Data) {
		return nil, fmt.Errorf("output shape %v does not match %d values", shape, len(data))
	}
	copy(t.Data, data)
	return t, nil
}
