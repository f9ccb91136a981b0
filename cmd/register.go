package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/database"
	"github.com/facegate/facegate/internal/embedding"
	"github.com/facegate/facegate/internal/imaging"
	"github.com/facegate/facegate/internal/match"
	"github.com/facegate/facegate/internal/people"
)

// errDuplicateFace marks enrollments rejected by the duplicate guard.
var errDuplicateFace = errors.New("face already registered")

var registerCmd = &cobra.Command{
	Use:   "register <photo>",
	Short: "Register a person from a photo",
	Long: `Register a new person. The largest face found in the photo becomes
the person's stored embedding. Registration is refused when the face is
already close to a registered one or the ID card number is taken.`,
	Args: cobra.ExactArgs(1),
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().String("name", "", "Person's name (required)")
	registerCmd.Flags().Int("age", 0, "Person's age")
	registerCmd.Flags().String("id-card", "", "ID card number (required, unique)")
	registerCmd.Flags().String("nationality", "", "Nationality")
	registerCmd.Flags().String("profession", "", "Profession")
}

// registerPerson runs the full enrollment flow against the given photo
// bytes. Shared between the register and import commands.
func registerPerson(ctx context.Context, repos *repositories, extractor embedding.Extractor, thresholds *config.ThresholdsConfig, reg people.Registration, photo []byte) (string, error) {
	if err := reg.Validate(); err != nil {
		return "", err
	}

	img, err := imaging.Decode(photo)
	if err != nil {
		return "", err
	}

	dets, err := extractor.Extract(ctx, img)
	if err != nil {
		return "", err
	}
	det, _ := embedding.BestDetection(dets)

	snapshot, err := repos.people.ListAll(ctx)
	if err != nil {
		return "", fmt.Errorf("loading gallery: %w", err)
	}

	probe := match.Probe{Embedding: det.Embedding, Family: det.Family}
	if dup, who := match.CheckDuplicate(probe, database.ToGallery(snapshot), thresholds.Duplicate(det.Family)); dup {
		return "", fmt.Errorf("%w as %s (%s, score %.3f)", errDuplicateFace, who.Name, who.PersonID, who.Score)
	}

	var photoJPEG []byte
	if face, cropErr := imaging.CropClamped(img, det.BBox); cropErr == nil {
		photoJPEG, _ = imaging.EncodeJPEG(face)
	}

	return repos.people.Insert(ctx, &database.Person{
		Name:         reg.Name,
		Age:          reg.Age,
		IDCardNumber: reg.IDCardNumber,
		Nationality:  reg.Nationality,
		Profession:   reg.Profession,
		Embedding:    det.Embedding,
		Family:       det.Family,
		Dim:          det.Dim,
		PhotoJPEG:    photoJPEG,
	})
}

func runRegister(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	photo, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading photo: %w", err)
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

	reg := people.Registration{
		Name:         mustGetString(cmd, "name"),
		Age:          mustGetInt(cmd, "age"),
		IDCardNumber: mustGetString(cmd, "id-card"),
		Nationality:  mustGetString(cmd, "nationality"),
		Profession:   mustGetString(cmd, "profession"),
	}

	id, err := registerPerson(ctx, repos, extractor, &cfg.Thresholds, reg, photo)
	if errors.Is(err, embedding.ErrNoFaceDetected) {
		return fmt.Errorf("no face detected in %s", args[0])
	}
	if err != nil {
		return err
	}

	fmt.Printf("Registered %s (%s)\n", reg.Name, id)
	return nil
}
