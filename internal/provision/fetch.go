// Package provision fetches the sample database archive when the configured
// database file is missing.
package provision

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Ensure makes sure a non-empty database file exists at path. When it is
// missing or empty, the zip archive at url is downloaded and the first member
// whose name ends in ".db" is extracted to path.
func Ensure(ctx context.Context, client *http.Client, path, url string) error {
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		return nil
	}
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("database %q is missing and no download URL is configured", path)
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download archive: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download archive: unexpected status %d", resp.StatusCode)
	}

	archive, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read archive body: %w", err)
	}
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return fmt.Errorf("open zip archive: %w", err)
	}

	for _, member := range reader.File {
		if !strings.HasSuffix(strings.ToLower(member.Name), ".db") {
			continue
		}
		return extractMember(member, path)
	}
	return fmt.Errorf("archive from %q contains no .db member", url)
}

func extractMember(member *zip.File, path string) error {
	src, err := member.Open()
	if err != nil {
		return fmt.Errorf("open archive member %q: %w", member.Name, err)
	}
	defer func() { _ = src.Close() }()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}
	}
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create database file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("write database file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("close database file: %w", err)
	}
	return nil
}
