// internal/command/command.go

// Package command builds ffmpeg argument lists for image-sequence
// conversion jobs. Builders here perform no I/O: given the same
// configuration, sequence and preset they always produce the same
// arguments, so construction is testable without running anything.
package command

import (
	"fmt"
	"path/filepath"
	"strconv"

	"frogmpeg/internal/config"
	"frogmpeg/internal/scanner"
)

// Invocation is one fully-formed encoder call. Args does not include
// the executable path; that comes from the configuration at run time.
type Invocation struct {
	Label string
	Args  []string
}

// Job is an ephemeral value tying one sequence folder to one preset
// and a computed output path. It lives for the duration of a single
// conversion and is never persisted.
type Job struct {
	FolderName  string
	Sequence    scanner.Sequence
	Preset      config.Preset
	OutputPath  string
	Invocations []Invocation
}

// NewJob plans the conversion of a sequence with a preset. When
// hardware acceleration is enabled the job carries two invocations: a
// primary GPU-codec argument set and a CPU-codec fallback with
// equivalent quality parameters. With acceleration disabled only the
// CPU invocation is produced.
func NewJob(cfg *config.Config, folderName string, seq scanner.Sequence, preset config.Preset, outputPath string) Job {
	job := Job{
		FolderName: folderName,
		Sequence:   seq,
		Preset:     preset,
		OutputPath: outputPath,
	}
	if cfg.Encoding.UseGPU {
		job.Invocations = append(job.Invocations,
			Invocation{Label: "h264_nvenc", Args: BuildArgs(cfg, seq, preset, outputPath, true)},
			Invocation{Label: "libx264", Args: BuildArgs(cfg, seq, preset, outputPath, false)},
		)
	} else {
		job.Invocations = append(job.Invocations,
			Invocation{Label: "libx264", Args: BuildArgs(cfg, seq, preset, outputPath, false)},
		)
	}
	return job
}

// BuildArgs constructs the ffmpeg argument list for one invocation.
// The returned slice is suitable for exec.Command(cfg.FFmpegPath, args...).
func BuildArgs(cfg *config.Config, seq scanner.Sequence, preset config.Preset, outputPath string, useGPU bool) []string {
	enc := cfg.Encoding

	args := []string{
		"-f", "image2",
		"-framerate", strconv.Itoa(preset.FPS),
		"-start_number", strconv.Itoa(seq.StartNumber),
		"-i", seq.Pattern(),
		"-vf", fmt.Sprintf("scale=%d:%d", preset.Width(), preset.Height()),
	}

	if useGPU {
		args = append(args,
			"-c:v", "h264_nvenc",
			"-preset", enc.GPUPreset,
			"-rc", "vbr",
			"-b:v", preset.Bitrate,
			"-maxrate", preset.Bitrate,
			"-bufsize", preset.Bitrate,
			"-g", strconv.Itoa(enc.KeyframeInterval),
			"-bf", strconv.Itoa(enc.BFrames),
			"-rc-lookahead", strconv.Itoa(enc.RCLookahead),
			"-spatial-aq", strconv.Itoa(enc.SpatialAQ),
			"-temporal-aq", strconv.Itoa(enc.TemporalAQ),
			"-pix_fmt", enc.PixelFormat,
		)
	} else {
		args = append(args,
			"-c:v", "libx264",
			"-preset", enc.CPUPreset,
			"-tune", enc.Tune,
			"-b:v", preset.Bitrate,
			"-g", strconv.Itoa(enc.KeyframeInterval),
			"-bf", strconv.Itoa(enc.BFrames),
			"-pix_fmt", enc.PixelFormat,
		)
	}

	args = append(args,
		"-loglevel", "error",
		"-stats",
		"-y", outputPath,
	)
	return args
}

// OutputPath derives the output file path for a folder. The exists
// probe keeps the function pure for testing; callers pass a real
// filesystem check. When the plain name is taken, a _1, _2, ... suffix
// is appended rather than overwriting a previous render.
func OutputPath(outputFolder, folderName string, exists func(string) bool) string {
	path := filepath.Join(outputFolder, folderName+".mp4")
	if exists == nil || !exists(path) {
		return path
	}
	for i := 1; ; i++ {
		candidate := filepath.Join(outputFolder, fmt.Sprintf("%s_%d.mp4", folderName, i))
		if !exists(candidate) {
			return candidate
		}
	}
}
