package media

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// probeFunc 便于测试时替换掉真正的ffprobe调用
var probeFunc = func(path string) (string, error) {
	return ffmpeg.Probe(path)
}

type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeDuration 用ffprobe读取视频时长（秒）
func ProbeDuration(path string) (float64, error) {
	out, err := probeFunc(path)
	if err != nil {
		return 0, errors.WithMessage(err, "ffprobe failed")
	}
	return parseDuration(out)
}

func parseDuration(probeJSON string) (float64, error) {
	var res probeResult
	if err := json.Unmarshal([]byte(probeJSON), &res); err != nil {
		return 0, errors.WithMessage(err, "invalid ffprobe output")
	}
	if res.Format.Duration == "" {
		return 0, errors.New("ffprobe output has no duration")
	}
	d, err := strconv.ParseFloat(res.Format.Duration, 64)
	if err != nil {
		return 0, errors.WithMessage(err, "invalid duration")
	}
	return d, nil
}
