package util

import (
	"encoding/json"
	"fmt"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

type probeFormat struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeDuration returns the length in seconds of a local media file as
// reported by ffprobe.
func ProbeDuration(mediaPath string) (float64, error) {
	out, err := ffmpeg.Probe(mediaPath)
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", mediaPath, err)
	}
	return parseProbeDuration(out)
}

func parseProbeDuration(out string) (float64, error) {
	var p probeFormat
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		return 0, fmt.Errorf("parse probe output: %w", err)
	}
	if p.Format.Duration == "" {
		return 0, nil
	}
	return strconv.ParseFloat(p.Format.Duration, 64)
}
