package logic

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/idelchi/intunewin/internal/fileutil"
	"github.com/idelchi/intunewin/internal/metadata"
)

const payloadPerm = 0o644

// MetadataPath returns where Encrypt writes the metadata document for payload.
func MetadataPath(payload string) string {
	return payload + ".xml"
}

// Encrypt turns a zip archive into a bare uploadable payload and writes its metadata
// document next to it.
func (r *Runner) Encrypt(ctx context.Context) (err error) {
	start := time.Now()
	input := r.cfg.Files[0]

	pkg, err := r.packager()
	if err != nil {
		return err
	}

	src, err := os.Open(input) //nolint:gosec // user-supplied input
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer src.Close()

	if err := ensureDir(filepath.Dir(r.cfg.Output)); err != nil {
		return err
	}

	tc, err := fileutil.NewTempContext("", r.cfg.Output)
	if err != nil {
		return fmt.Errorf("preparing atomic write: %w", err)
	}

	defer tc.CleanupOnError(&err)

	details := &metadata.ApplicationDetails{
		Name:        r.cfg.Name,
		Description: r.cfg.Description,
		SetupFile:   r.cfg.Setup,
	}

	info, err := pkg.CreateUploadablePackage(ctx, src, tc.TmpFile, details)
	if err != nil {
		return fmt.Errorf("encrypting %q: %w", input, err)
	}

	if err = tc.Commit(payloadPerm); err != nil {
		return err
	}

	metaPath := MetadataPath(r.cfg.Output)
	if err = metadata.WriteFile(metaPath, info); err != nil {
		return err
	}

	size, err := fileutil.FinalizeOutput(r.cfg.Output, time.Time{})
	if err != nil {
		return fmt.Errorf("finalizing output: %w", err)
	}

	r.printf("Encrypted %q -> %q (metadata %q)\n", input, r.cfg.Output, metaPath)

	if r.cfg.Stats {
		printStats(r.stderr, 1, 0, 1, 0, size, time.Since(start))
	}

	return nil
}

// Decrypt authenticates a bare payload with the keys of its metadata document and
// extracts it into the output directory.
func (r *Runner) Decrypt(ctx context.Context) error {
	start := time.Now()
	input := r.cfg.Files[0]

	pkg, err := r.packager()
	if err != nil {
		return err
	}

	info, err := metadata.ParseFile(r.cfg.Metadata)
	if err != nil {
		return fmt.Errorf("reading metadata %q: %w", r.cfg.Metadata, err)
	}

	src, err := os.Open(input) //nolint:gosec // user-supplied input
	if err != nil {
		return fmt.Errorf("opening payload: %w", err)
	}
	defer src.Close()

	if err := pkg.DecryptAndUnpackStreamToFolder(ctx, src, r.cfg.Output, info.EncryptionInfo); err != nil {
		return fmt.Errorf("decrypting %q: %w", input, err)
	}

	r.printf("Decrypted %q -> %q\n", input, r.cfg.Output)

	if r.cfg.Stats {
		printStats(r.stderr, 1, 0, 1, 0, info.UnencryptedContentSize, time.Since(start))
	}

	return nil
}
