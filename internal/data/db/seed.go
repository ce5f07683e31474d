package db

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/projectdesk-backend/internal/domain"
	"github.com/yungbote/projectdesk-backend/internal/domain/content"
)

//go:embed seed_content.yaml
var seedContentYAML []byte

type seedFile struct {
	Discussions []struct {
		Title      string   `yaml:"title"`
		Content    string   `yaml:"content"`
		Category   string   `yaml:"category"`
		Tags       []string `yaml:"tags"`
		Pinned     bool     `yaml:"pinned"`
		AuthorName string   `yaml:"author_name"`
	} `yaml:"discussions"`
	Documents []struct {
		Title       string   `yaml:"title"`
		Description string   `yaml:"description"`
		Category    string   `yaml:"category"`
		Tags        []string `yaml:"tags"`
	} `yaml:"documents"`
	Versions []struct {
		Version     string   `yaml:"version"`
		Title       string   `yaml:"title"`
		Description string   `yaml:"description"`
		Changes     []string `yaml:"changes"`
		ReleaseType string   `yaml:"release_type"`
		ReleaseDate string   `yaml:"release_date"`
	} `yaml:"versions"`
}

func loadSeedFile() (*seedFile, error) {
	var f seedFile
	if err := yaml.Unmarshal(seedContentYAML, &f); err != nil {
		return nil, fmt.Errorf("parse seed content: %w", err)
	}
	return &f, nil
}

// seedContent fills sample discussions, documents and releases into empty tables only.
func seedContent(ctx context.Context, tx *gorm.DB) error {
	f, err := loadSeedFile()
	if err != nil {
		return err
	}
	tx = tx.WithContext(ctx)

	if empty, err := tableEmpty(tx, &types.Discussion{}); err != nil {
		return err
	} else if empty {
		for _, d := range f.Discussions {
			row := &types.Discussion{
				ID:         uuid.New(),
				Title:      d.Title,
				Content:    d.Content,
				Excerpt:    content.Excerpt(d.Content),
				Category:   d.Category,
				Tags:       datatypes.JSONSlice[string](d.Tags),
				Pinned:     d.Pinned,
				AuthorName: d.AuthorName,
			}
			if err := tx.Create(row).Error; err != nil {
				return fmt.Errorf("seed discussion %q: %w", d.Title, err)
			}
		}
	}

	if empty, err := tableEmpty(tx, &types.Document{}); err != nil {
		return err
	} else if empty {
		for _, d := range f.Documents {
			row := &types.Document{
				ID:             uuid.New(),
				Title:          d.Title,
				Description:    d.Description,
				Category:       d.Category,
				Tags:           datatypes.JSONSlice[string](d.Tags),
				StorageBackend: types.StorageNone,
			}
			if err := tx.Create(row).Error; err != nil {
				return fmt.Errorf("seed document %q: %w", d.Title, err)
			}
		}
	}

	if empty, err := tableEmpty(tx, &types.VersionHistory{}); err != nil {
		return err
	} else if empty {
		for _, v := range f.Versions {
			released, err := time.Parse("2006-01-02", v.ReleaseDate)
			if err != nil {
				return fmt.Errorf("seed version %q: bad release_date: %w", v.Version, err)
			}
			row := &types.VersionHistory{
				ID:          uuid.New(),
				Version:     v.Version,
				Title:       v.Title,
				Description: v.Description,
				Changes:     datatypes.JSONSlice[string](v.Changes),
				ReleaseType: v.ReleaseType,
				ReleaseDate: released.UTC(),
			}
			if err := tx.Create(row).Error; err != nil {
				return fmt.Errorf("seed version %q: %w", v.Version, err)
			}
		}
	}
	return nil
}

func tableEmpty(tx *gorm.DB, model any) (bool, error) {
	var n int64
	if err := tx.Model(model).Count(&n).Error; err != nil {
		return false, err
	}
	return n == 0, nil
}
