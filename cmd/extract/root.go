package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"incidenttagger/internal/app"
	"incidenttagger/internal/config"
	"incidenttagger/internal/logger"
	"incidenttagger/internal/service"
	"incidenttagger/internal/service/sampler"
	"incidenttagger/internal/service/storage"
	"incidenttagger/internal/video"
)

// openerFunc picks a decoder for cfg; nil means app.NewOpener.
type openerFunc func(cfg *config.Config) video.Opener

func newRootCmd(openerFor openerFunc) *cobra.Command {
	if openerFor == nil {
		openerFor = app.NewOpener
	}

	var (
		videoPath string
		outDir    string
		interval  int
		decoder   string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Save every Nth frame of an incident video as JPEG",
		Long: `Extract decodes a video and writes every Nth frame (15 by default) into the
output directory as frame_<YYYYMMDD_HHMMSS_ffffff>.jpg.

The output directory is deleted and recreated first.`,
		Example: `  # Sample a dashcam clip into ./violations_output
  extract --video crash.mp4

  # Use ffmpeg and keep every 5th frame
  extract --video crash.mp4 --out frames --interval 5 --decoder ffmpeg`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("out") {
				cfg.WorkspaceDirectory = outDir
			}
			if cmd.Flags().Changed("interval") {
				cfg.SampleInterval = interval
			}
			if cmd.Flags().Changed("decoder") {
				cfg.Decoder = decoder
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := logger.New(cfg.LogDirectory, cfg.LogLevel)
			if err != nil {
				return err
			}
			defer log.Close()

			workspace := storage.NewWorkspace(cfg.WorkspaceDirectory)
			if err := workspace.Reset(); err != nil {
				return err
			}

			s := sampler.New(cfg.SampleInterval, log.With("video", videoPath))
			res := sampler.Result{}
			src, err := openerFor(cfg).Open(cmd.Context(), videoPath)
			if err != nil {
				log.Warning("Cannot open video %s: %v", videoPath, err)
			} else {
				defer src.Close()
				res, err = s.Sample(cmd.Context(), src, workspace)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			for _, name := range res.Frames {
				fmt.Fprintln(out, name)
			}
			fmt.Fprintf(out, service.ExtractionDoneMessage+"\n", res.Saved)
			return nil
		},
	}

	cmd.Flags().StringVar(&videoPath, "video", "", "Video file to sample")
	cmd.Flags().StringVarP(&outDir, "out", "o", "./violations_output", "Output directory (wiped before extraction)")
	cmd.Flags().IntVarP(&interval, "interval", "n", sampler.DefaultInterval, "Save every Nth frame")
	cmd.Flags().StringVar(&decoder, "decoder", config.DecoderOpenCV, "Decoder back-end: opencv or ffmpeg")
	_ = cmd.MarkFlagRequired("video")

	return cmd
}
