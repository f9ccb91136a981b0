package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/database"
	"github.com/facegate/facegate/internal/imaging"
	"github.com/facegate/facegate/internal/recognize"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize <frame>",
	Short: "Match faces in a frame against the registered gallery",
	Long: `Run one recognition pass over an image. Every detected face is
matched independently and every attempt is logged. Use --output to save
the annotated frame (green boxes for recognized faces, red for unknown).`,
	Args: cobra.ExactArgs(1),
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)

	recognizeCmd.Flags().String("output", "", "Write the annotated frame to this path")
}

func runRecognize(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading frame: %w", err)
	}
	frame, err := imaging.Decode(data)
	if err != nil {
		return err
	}

	ctx := context.Background()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.Close()

	extractor, err := newExtractor(ctx, cfg)
	if err != nil {
		return err
	}

	snapshot, err := repos.people.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("loading gallery: %w", err)
	}

	engine := recognize.New(extractor, &cfg.Thresholds)
	annotated, outcomes, err := engine.Recognize(ctx, frame, database.ToGallery(snapshot))
	if err != nil {
		return err
	}

	if len(outcomes) == 0 {
		fmt.Println("No faces detected")
		return nil
	}

	for _, out := range outcomes {
		status := database.StatusUnknown
		if out.Recognized {
			status = database.StatusRecognized
			fmt.Printf("%-12s %s (score %.3f) at %v\n", status, out.Name, out.Confidence, out.Region)
		} else {
			fmt.Printf("%-12s best score %.3f at %v\n", status, out.Confidence, out.Region)
		}

		var faceJPEG []byte
		if out.Face != nil {
			faceJPEG, _ = imaging.EncodeJPEG(out.Face)
		}
		entry := &database.RecognitionLog{
			Status:     status,
			PersonID:   out.PersonID,
			PersonName: out.Name,
			Confidence: out.Confidence,
			FaceJPEG:   faceJPEG,
		}
		if logErr := repos.logs.Add(ctx, entry); logErr != nil {
			fmt.Printf("Warning: failed to log attempt: %v\n", logErr)
		}
	}

	if output := mustGetString(cmd, "output"); output != "" {
		encoded, err := imaging.EncodeJPEG(annotated)
		if err != nil {
			return fmt.Errorf("encoding annotated frame: %w", err)
		}
		if err := os.WriteFile(output, encoded, 0o644); err != nil {
			return fmt.Errorf("writing annotated frame: %w", err)
		}
		fmt.Printf("Annotated frame saved to %s\n", output)
	}

	return nil
}
