// Package sync reconciles configured deck sources into the store: new
// cards are inserted, cards no longer present in any deck file are
// deleted along with their history. Scheduling state of surviving cards
// is untouched; card identity is content-derived, so unchanged cards
// keep their state across syncs.
package sync

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mnemohq/mnemo/internal/deck"
	"github.com/mnemohq/mnemo/internal/domain"
	"github.com/mnemohq/mnemo/internal/gitsource"
	"github.com/mnemohq/mnemo/internal/storage"
)

// DetectKind classifies a source path as "git" or "local".
func DetectKind(path string) string {
	if strings.HasSuffix(path, ".git") || strings.HasPrefix(path, "git@") ||
		strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "http://") {
		return "git"
	}
	return "local"
}

// Run iterates over all sources and reconciles them. reposDir is where
// git sources are checked out.
func Run(store *storage.Store, reposDir string) error {
	slog.Info("Starting sync for all sources")
	sources, err := store.AllSources()
	if err != nil {
		return fmt.Errorf("failed to get sources: %w", err)
	}

	if len(sources) == 0 {
		slog.Info("No sources configured. Add one with: mnemo add-source <path/or/url.git>")
		return nil
	}

	if err := os.MkdirAll(reposDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create repos directory: %w", err)
	}

	for _, source := range sources {
		slog.Info("Syncing source", "id", source.ID, "kind", source.Kind, "path", source.Path)

		dir := source.Path
		if source.Kind == "git" {
			localPath, err := gitURLToLocalPath(reposDir, source.Path)
			if err != nil {
				slog.Error("Error determining local path for git repo", "url", source.Path, "error", err)
				continue
			}
			if err := gitsource.Fetch(source.Path, localPath); err != nil {
				slog.Error("Error fetching git repo", "url", source.Path, "error", err)
				continue
			}
			dir = localPath
		}

		reconcile(store, source.ID, dir)
	}
	slog.Info("Sync complete")
	return nil
}

// reconcile walks one deck directory and brings the store in line with
// its contents.
func reconcile(store *storage.Store, sourceID int64, dir string) {
	var (
		parsed      []domain.Card
		parseErrors []error
		found       = make(map[string]bool)
	)

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		cards, parseErr := deck.ParseFile(path)
		if parseErr != nil {
			parseErrors = append(parseErrors, fmt.Errorf("parsing %s: %w", path, parseErr))
		}
		for _, card := range cards {
			parsed = append(parsed, card)
			found[card.ID] = true

			existing, findErr := store.FindCard(card.ID)
			if findErr != nil {
				parseErrors = append(parseErrors, fmt.Errorf("store check for %s: %w", card.ID, findErr))
				continue
			}
			if existing == nil {
				slog.Info("New card found, inserting", "id", card.ID)
				if insertErr := store.InsertCard(card, sourceID); insertErr != nil {
					parseErrors = append(parseErrors, fmt.Errorf("store insert for %s: %w", card.ID, insertErr))
				}
			}
		}
		return nil
	})
	if walkErr != nil {
		slog.Error("Error walking deck directory", "path", dir, "error", walkErr)
		return
	}

	ids, err := store.CardIDsBySource(sourceID)
	if err != nil {
		slog.Error("Error getting cards for source", "source_id", sourceID, "error", err)
		return
	}

	var orphaned int
	for _, id := range ids {
		if !found[id] {
			slog.Info("Orphaned card, deleting", "id", id)
			orphaned++
			if err := store.DeleteCard(id); err != nil {
				slog.Warn("Failed to delete orphaned card", "id", id, "error", err)
			}
		}
	}

	if err := store.TouchSource(sourceID, time.Now().UTC()); err != nil {
		slog.Warn("Failed to update last synced for source", "source_id", sourceID, "error", err)
	}

	slog.Info("reconciliation complete",
		"path", dir,
		"parsed_cards", len(parsed),
		"orphaned_deleted", orphaned,
		"errors", len(parseErrors),
	)
}

func gitURLToLocalPath(baseDir, repoURL string) (string, error) {
	parsedURL, err := url.Parse(repoURL)
	if err != nil || (parsedURL.Scheme != "https" && parsedURL.Scheme != "http") {
		// scp-style git address: git@host:user/repo.git
		if strings.Contains(repoURL, "@") {
			parts := strings.Split(repoURL, ":")
			if len(parts) == 2 {
				hostAndUser := strings.Split(parts[0], "@")
				if len(hostAndUser) == 2 {
					repoPath := strings.TrimSuffix(parts[1], ".git")
					return filepath.Join(baseDir, hostAndUser[1], repoPath), nil
				}
			}
		}
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}

	sanitized := strings.TrimSuffix(parsedURL.Path, ".git")
	return filepath.Join(baseDir, parsedURL.Host, sanitized), nil
}
