package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"
)

// isGitURL checks if the input string looks like a Git repository URL.
// Only the .git suffix and the git@ SSH form count; a bare https:// path
// could just as well be a local directory name.
func isGitURL(input string) bool {
	if strings.HasPrefix(input, "git@") {
		return true
	}
	if !strings.HasSuffix(input, ".git") {
		return false
	}
	// A local directory named "something.git" is a bare repo on disk, not a URL.
	if info, err := os.Stat(input); err == nil && info.IsDir() {
		return false
	}
	return strings.Contains(input, "://")
}

// cloneGitRepo shallow-clones url into a new temporary directory and returns
// its path. The caller removes the directory.
func cloneGitRepo(ctx context.Context, url string, progress io.Writer, logger *zap.Logger) (string, error) {
	tempDir, err := os.MkdirTemp("", appName+"-git-")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary directory: %w", err)
	}

	logger.Info("cloning repository", zap.String("url", url), zap.String("dir", tempDir))

	_, err = git.PlainCloneContext(ctx, tempDir, false, &git.CloneOptions{
		URL:           url,
		Progress:      progress,
		Depth:         1,
		ReferenceName: plumbing.HEAD,
		SingleBranch:  true,
	})
	if err != nil {
		_ = os.RemoveAll(tempDir)
		return "", fmt.Errorf("failed to clone repository '%s': %w", url, err)
	}

	logger.Info("clone finished", zap.String("url", url))
	return tempDir, nil
}
