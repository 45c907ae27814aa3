package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/ambuda-org/proofkit/internal/config"
	"github.com/ambuda-org/proofkit/internal/proofing"
	"github.com/ambuda-org/proofkit/internal/publish"
	"github.com/ambuda-org/proofkit/internal/store"
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <dir>",
		Short: "Import a directory of pages into the proofing database as a new project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			common, err := readCommonOptions(cmd)
			if err != nil {
				return err
			}
			slug, _ := cmd.Flags().GetString("slug")
			if strings.TrimSpace(slug) == "" {
				return fmt.Errorf("--slug is required")
			}
			dbPath, _ := cmd.Flags().GetString("db")
			if dbPath == "" {
				dbPath = common.Config.Database.Path
			}

			meta := config.MergeMetadata(nil, common.Config.Publication.Metadata)
			if path, _ := cmd.Flags().GetString("metadata"); path != "" {
				fileMeta, err := config.LoadMetadata(path)
				if err != nil {
					return fmt.Errorf("--metadata: %w", err)
				}
				meta = config.MergeMetadata(meta, fileMeta)
			}

			if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
			lock := flock.New(dbPath + ".lock")
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("failed to lock database: %w", err)
			}
			if !locked {
				return fmt.Errorf("database %s is in use by another seed", dbPath)
			}
			defer func() { _ = lock.Unlock() }()

			ctx := commandContext(cmd)
			pages, _, err := publish.DirSource{Dir: args[0]}.Load(ctx)
			if err != nil {
				return err
			}

			s, err := store.Open(ctx, dbPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer s.Close()

			if _, err := s.ProjectBySlug(ctx, slug); err == nil {
				return fmt.Errorf("project %q already exists", slug)
			} else if !errors.Is(err, store.ErrProjectNotFound) {
				return err
			}

			project := store.Project{
				Slug:              slug,
				Title:             meta[proofing.MetaTitle],
				Author:            meta[proofing.MetaAuthor],
				Editor:            meta[proofing.MetaEditor],
				Publisher:         meta[proofing.MetaPublisher],
				PublisherLocation: meta[proofing.MetaPublisherLocation],
				PublicationYear:   meta[proofing.MetaPublicationYear],
			}
			if _, err := s.ImportProject(ctx, project, pages, time.Now().Unix()); err != nil {
				return err
			}
			common.Logger.Info("project seeded", "slug", slug, "pages", len(pages), "db", dbPath)
			return nil
		},
	}
	cmd.Flags().String("slug", "", "Project slug")
	cmd.Flags().String("db", "", "Proofing database path (default from config)")
	cmd.Flags().String("metadata", "", "Metadata file (.toml, .yaml, .json) for the project")
	return cmd
}
