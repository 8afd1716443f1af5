package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	pgrepo "github.com/jwong2529/humor-study/internal/repo/postgres"
)

type seedFile struct {
	Captions []seedCaption `yaml:"captions"`
}

type seedCaption struct {
	Image   string `yaml:"image"`
	Content string `yaml:"content"`
}

func parseSeed(r io.Reader) (seedFile, error) {
	var seed seedFile
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil {
		return seedFile{}, fmt.Errorf("parse seed yaml: %w", err)
	}
	if len(seed.Captions) == 0 {
		return seedFile{}, errors.New("seed file has no captions")
	}
	for i, c := range seed.Captions {
		if strings.TrimSpace(c.Content) == "" {
			return seedFile{}, fmt.Errorf("caption %d has no content", i)
		}
	}
	return seed, nil
}

func newSeedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <captions.yaml>",
		Short: "Insert captions and their images from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open seed file: %w", err)
			}
			defer f.Close()

			seed, err := parseSeed(f)
			if err != nil {
				return err
			}

			pool, err := ctx.openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			repo := pgrepo.NewCaptionRepo(pool)
			for _, c := range seed.Captions {
				caption, err := repo.InsertWithImage(cmd.Context(), strings.TrimSpace(c.Image), strings.TrimSpace(c.Content))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", caption.ID, caption.Content)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d captions\n", len(seed.Captions))
			return nil
		},
	}
}
