package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/database"
	"github.com/facegate/facegate/internal/embedding"
	"github.com/facegate/facegate/internal/imaging"
	"github.com/facegate/facegate/internal/people"
)

var importCmd = &cobra.Command{
	Use:   "import <directory>",
	Short: "Bulk-register people from a directory of photos",
	Long: `Register every photo in a directory. The person's name comes from the
file name (underscores become spaces) and the ID card number defaults to
the bare file name. Photos without a detectable face and faces that are
already registered are skipped and counted.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().Bool("quiet", false, "Suppress the progress bar")
}

// photoExtensions are the image formats the decoder understands.
var photoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
}

func listPhotoFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if photoExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// nameFromFile derives a person name from a photo file name.
func nameFromFile(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.Join(strings.Fields(strings.ReplaceAll(base, "_", " ")), " ")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	files, err := listPhotoFiles(args[0])
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No photos found")
		return nil
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

	quiet := mustGetBool(cmd, "quiet")
	var bar *progressbar.ProgressBar
	if !quiet {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("Registering"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("photos"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionFullWidth(),
		)
	}

	// near-duplicate photo detection within one run
	const hashThreshold = 10
	var seenHashes []uint64

	var registered, noFace, duplicates, samePhoto, failed int
	for _, file := range files {
		if bar != nil {
			bar.Add(1)
		}

		photo, err := os.ReadFile(file)
		if err != nil {
			failed++
			continue
		}

		img, err := imaging.Decode(photo)
		if err != nil {
			failed++
			continue
		}
		hash := imaging.DHash(img)
		duplicatePhoto := false
		for _, seen := range seenHashes {
			if imaging.SimilarHash(hash, seen, hashThreshold) {
				duplicatePhoto = true
				break
			}
		}
		if duplicatePhoto {
			samePhoto++
			continue
		}
		seenHashes = append(seenHashes, hash)

		base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		reg := people.Registration{
			Name:         nameFromFile(file),
			IDCardNumber: base,
		}

		_, err = registerPerson(ctx, repos, extractor, &cfg.Thresholds, reg, photo)
		switch {
		case err == nil:
			registered++
		case errors.Is(err, embedding.ErrNoFaceDetected):
			noFace++
		case errors.Is(err, database.ErrConflict), errors.Is(err, errDuplicateFace):
			duplicates++
		default:
			failed++
			fmt.Printf("\nWarning: %s: %v\n", filepath.Base(file), err)
		}
	}

	fmt.Printf("\nRegistered %d of %d photos (%d without a face, %d duplicate faces, %d repeated photos, %d failed)\n",
		registered, len(files), noFace, duplicates, samePhoto, failed)
	return nil
}
