package main

import (
	"encoding/json"
	"os"

	"github.com/LdDl/sort-go/mot"
	"github.com/pkg/errors"
)

// VideoLabels is a detections file: per-frame detector output for one video
type VideoLabels struct {
	Classes []string       `json:"classes"`
	Frames  []*ImageLabels `json:"frames"`
}

type ImageLabels struct {
	Frame   int               `json:"frame,omitempty"` // Frame number in the source video
	Objects []ObjectDetection `json:"objects"`
}

// ObjectDetection is an object that a neural network has found in an image
type ObjectDetection struct {
	Class      int           `json:"class"`
	Confidence float64       `json:"confidence"`
	Box        mot.Rectangle `json:"box"`
}

func loadVideoLabels(path string) (*VideoLabels, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "can't read detections file")
	}
	labels := &VideoLabels{}
	if err := json.Unmarshal(data, labels); err != nil {
		return nil, errors.Wrap(err, "can't parse detections file")
	}
	if len(labels.Classes) == 0 {
		labels.Classes = mot.DefaultClasses
	}
	return labels, nil
}

// detections converts one frame to tracker input, dropping objects scored
// below minScore.
func (il *ImageLabels) detections(classes []string, minScore float64) []mot.Detection {
	out := make([]mot.Detection, 0, len(il.Objects))
	for _, obj := range il.Objects {
		if obj.Confidence < minScore {
			continue
		}
		out = append(out, mot.Detection{
			Box:        obj.Box,
			ClassLabel: mot.ClassLabel(classes, obj.Class),
			Score:      obj.Confidence,
		})
	}
	return out
}
