// main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/schollz/progressbar/v3"

	"frogmpeg/internal/command"
	"frogmpeg/internal/config"
	"frogmpeg/internal/runner"
	"frogmpeg/internal/scanner"
	"frogmpeg/internal/tui"
	"frogmpeg/internal/ui"
)

const version = "1.0.0"

// Exit codes: 0 success, 1 configuration/scan/job errors, 2 usage
// errors.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	styles := ui.ForTheme("frog")

	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}

	switch args[0] {
	case "convert":
		return cmdConvert(args[1:], stdout, stderr)
	case "list-presets":
		return cmdListPresets(stdout, stderr)
	case "init":
		return cmdInit(args[1:], stdout, stderr)
	case "validate":
		return cmdValidate(stdout, stderr)
	case "gui":
		return cmdGUI(stderr)
	case "version", "--version":
		fmt.Fprintf(stdout, "FrogMPEG %s\n", version)
		return exitOK
	case "help", "-h", "--help":
		usage(stdout)
		return exitOK
	default:
		fmt.Fprintln(stderr, styles.Error.Render(fmt.Sprintf("unknown command %q", args[0])))
		usage(stderr)
		return exitUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "FrogMPEG - convert image sequences to MP4")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: frogmpeg <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert       Convert a sequence folder (use --folder, --preset, --extension)")
	fmt.Fprintln(w, "  list-presets  List presets defined in config.json")
	fmt.Fprintln(w, "  init          Create config.json from the built-in template")
	fmt.Fprintln(w, "  validate      Check configuration and environment")
	fmt.Fprintln(w, "  gui           Launch the interactive interface")
	fmt.Fprintln(w, "  version       Print the version")
}

func cmdConvert(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	folderFlag := fs.String("folder", "", "folder name inside the renders folder")
	presetFlag := fs.String("preset", "", "preset name from config.json")
	extFlag := fs.String("extension", "", "override the frame file extension (jpeg/jpg/png)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return reportError(stderr, cfg, err)
	}
	styles := ui.ForTheme(cfg.UI.Theme)

	if err := cfg.CheckEncoder(); err != nil {
		return reportError(stderr, cfg, err)
	}

	extension := cfg.Defaults.FileExtension
	if *extFlag != "" {
		extension = strings.ToLower(strings.TrimPrefix(*extFlag, "."))
	}

	folders, err := scanner.Scan(cfg.RendersFolder, extension)
	if err != nil {
		return reportError(stderr, cfg, err)
	}

	folder, err := resolveFolder(folders, *folderFlag)
	if err != nil {
		fmt.Fprintln(stderr, styles.Error.Render(err.Error()))
		return exitUsage
	}

	preset, err := cfg.ResolvePreset(*presetFlag)
	if err != nil {
		fmt.Fprintln(stderr, styles.Error.Render(err.Error()))
		return exitUsage
	}

	seq, err := scanner.DetectSequence(folder.Path, extension)
	if err != nil {
		return reportError(stderr, cfg, err)
	}

	fmt.Fprintf(stdout, "Found %d *.%s files in %s\n", seq.FrameCount, extension, folder.Name)
	fmt.Fprintf(stdout, "Using preset: %s (%s @ %dfps, %s)\n",
		preset.Name, preset.Resolution, preset.FPS, preset.Bitrate)

	if cfg.AutoCreateOutput {
		if err := os.MkdirAll(cfg.OutputFolder, 0o755); err != nil {
			return reportError(stderr, cfg, fmt.Errorf("creating output folder: %v", err))
		}
	}
	outputPath := command.OutputPath(cfg.OutputFolder, folder.Name, func(p string) bool {
		_, err := os.Stat(p)
		return err == nil
	})

	job := command.NewJob(cfg, folder.Name, seq, preset, outputPath)
	result, err := runJobWithSpinner(runner.New(cfg.FFmpegPath), job, stderr)
	if err != nil {
		fmt.Fprintln(stderr, styles.Error.Render(err.Error()))
		return exitError
	}
	if result.FellBack() {
		fmt.Fprintln(stdout, styles.Subtle.Render("NVENC failed; encoded with libx264 instead."))
	}

	fmt.Fprintln(stdout, styles.Success.Render("Ribbiting success! Output saved to "+outputPath))
	if fi, err := os.Stat(outputPath); err == nil {
		fmt.Fprintln(stdout, styles.Subtle.Render(ui.FormatFileSize(fi.Size())))
	}
	return exitOK
}

// runJobWithSpinner blocks on the encoder while keeping a spinner
// alive on stderr so long encodes still look busy.
func runJobWithSpinner(r *runner.Runner, job command.Job, w io.Writer) (runner.Result, error) {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Encoding "+job.FolderName),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-time.After(100 * time.Millisecond):
				bar.Add(1)
			}
		}
	}()

	result, err := r.Run(job)
	close(done)
	bar.Clear()
	return result, err
}

// resolveFolder picks the conversion target: an explicit name must
// exist; with no flag a single discovered folder is unambiguous,
// anything else is a usage error.
func resolveFolder(folders []scanner.Folder, name string) (scanner.Folder, error) {
	if name != "" {
		for _, f := range folders {
			if f.Name == name {
				return f, nil
			}
		}
		return scanner.Folder{}, fmt.Errorf("folder %q not found inside renders folder", name)
	}
	switch len(folders) {
	case 0:
		return scanner.Folder{}, errors.New("no sequence folders found; nothing to convert")
	case 1:
		return folders[0], nil
	default:
		names := make([]string, len(folders))
		for i, f := range folders {
			names[i] = f.Name
		}
		return scanner.Folder{}, fmt.Errorf("multiple folders found (%s); pick one with --folder", strings.Join(names, ", "))
	}
}

func cmdListPresets(stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		return reportError(stderr, cfg, err)
	}
	styles := ui.ForTheme(cfg.UI.Theme)

	if len(cfg.Presets) == 0 {
		fmt.Fprintln(stdout, styles.Subtle.Render("No presets defined in config.json"))
		return exitOK
	}
	fmt.Fprintln(stdout, styles.Success.Render("Available presets:"))
	for _, p := range cfg.Presets {
		desc := p.Description
		if desc == "" {
			desc = "No description"
		}
		fmt.Fprintf(stdout, "- %s: %s (%s, %s, %dfps)\n", p.Name, desc, p.Resolution, p.Bitrate, p.FPS)
	}
	return exitOK
}

func cmdInit(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(stderr)
	force := fs.Bool("force", false, "overwrite an existing config.json")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	styles := ui.ForTheme("frog")

	if _, err := os.Stat(config.DefaultPath); err == nil && !*force {
		prompt := promptui.Prompt{
			Label:     "config.json already exists. Overwrite",
			IsConfirm: true,
		}
		if _, err := prompt.Run(); err != nil {
			fmt.Fprintln(stdout, styles.Subtle.Render("config.json left unchanged."))
			return exitOK
		}
		*force = true
	}

	if err := config.WriteTemplate(config.DefaultPath, *force); err != nil {
		fmt.Fprintln(stderr, styles.Error.Render(err.Error()))
		return exitError
	}
	fmt.Fprintln(stdout, styles.Success.Render("config.json is ready. Customize it for your project."))
	return exitOK
}

func cmdValidate(stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		return reportError(stderr, cfg, err)
	}
	styles := ui.ForTheme(cfg.UI.Theme)

	errs := cfg.Validate()
	for _, e := range errs {
		fmt.Fprintln(stderr, styles.Error.Render(e.Error()))
	}
	if len(cfg.Presets) > 0 {
		fmt.Fprintf(stdout, "%d presets loaded.\n", len(cfg.Presets))
	}
	if len(errs) > 0 {
		return exitError
	}
	fmt.Fprintln(stdout, styles.Success.Render("Configuration validated successfully!"))
	return exitOK
}

func cmdGUI(stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		return reportError(stderr, cfg, err)
	}
	if err := tui.Run(cfg); err != nil {
		return reportError(stderr, cfg, err)
	}
	return exitOK
}

// reportError prints a configuration or job error with the themed
// error style and maps it to the error exit code.
func reportError(w io.Writer, cfg *config.Config, err error) int {
	theme := "frog"
	if cfg != nil {
		theme = cfg.UI.Theme
	}
	styles := ui.ForTheme(theme)
	fmt.Fprintln(w, styles.Error.Render("Error: "+err.Error()))
	return exitError
}
