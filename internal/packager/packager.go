package packager

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/idelchi/intunewin/internal/archive"
	"github.com/idelchi/intunewin/internal/encryption"
	"github.com/idelchi/intunewin/internal/fileutil"
	"github.com/idelchi/intunewin/internal/filter"
	"github.com/idelchi/intunewin/internal/metadata"
)

const dirPerm = 0o750

// Packager creates and opens containers. It is safe for concurrent use;
// every operation works in its own temporary directory.
type Packager struct {
	logger  *log.Logger
	tempDir string
	keys    encryption.KeySource
	filter  *filter.Filter
}

// New returns a Packager configured by opts.
func New(opts ...Option) *Packager {
	p := &Packager{
		logger: discardLogger(),
		keys:   encryption.RandomKeys{},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// CreatePackage packages sourceDir into <outputDir>/<setup base name>.intunewin.
//
// setupFile must live inside sourceDir; a relative setupFile is resolved against sourceDir.
// details may be nil. The returned ApplicationInfo is the document stored in the container.
// On failure or cancellation no container is left at the output path.
func (p *Packager) CreatePackage(
	ctx context.Context,
	sourceDir, setupFile, outputDir string,
	details *metadata.ApplicationDetails,
) (*metadata.ApplicationInfo, error) {
	start := time.Now()
	logger := p.logger.With("op", OpCreate, "setup", setupFile)

	params, err := p.checkCreate(sourceDir, setupFile, outputDir)
	if err != nil {
		logger.Error("invalid arguments", "err", err)

		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, wrap(OpCreate, params.source, err)
	}

	logger.Info("creating package", "source", params.source, "output", params.output)

	work, err := fileutil.NewWorkDir(p.tempDir)
	if err != nil {
		return nil, p.fail(logger, OpCreate, p.tempDir, err)
	}
	defer p.cleanup(ctx, logger, work)

	packageDir := work.Join(PackageFolder)
	payload := filepath.Join(packageDir, ContentsFolder, metadata.EncryptedFileName)

	logger.Debug("compressing source folder", "payload", payload)

	total, err := archive.ArchiveDirectory(ctx, params.source, payload,
		archive.WithCompression(false),
		archive.WithRootFolder(false),
		archive.WithFilter(p.filter),
	)
	if err != nil {
		return nil, p.fail(logger, OpCreate, params.source, err)
	}

	stat, err := os.Stat(payload)
	if err != nil {
		return nil, p.fail(logger, OpCreate, payload, err)
	}

	logger.Debug("compressed source folder", "files_size", total, "payload_size", stat.Size())

	info := metadata.New(details)
	if info.Name == "" {
		info.Name = filepath.Base(params.setup)
	}

	info.SetupFile = params.setupRel
	info.UnencryptedContentSize = stat.Size()

	logger.Debug("encrypting payload")

	if info.EncryptionInfo, err = p.encryptFile(ctx, payload); err != nil {
		return nil, p.fail(logger, OpCreate, payload, err)
	}

	detection := filepath.Join(packageDir, MetadataFolder, DetectionFile)

	if err := os.MkdirAll(filepath.Dir(detection), dirPerm); err != nil {
		return nil, p.fail(logger, OpCreate, detection, err)
	}

	if err := metadata.WriteFile(detection, info); err != nil {
		return nil, p.fail(logger, OpCreate, detection, err)
	}

	output := OutputFileName(params.setup, params.output)

	logger.Debug("writing container", "file", output)

	if _, err := archive.ArchiveDirectory(ctx, packageDir, output,
		archive.WithCompression(true),
		archive.WithRootFolder(true),
	); err != nil {
		return nil, p.fail(logger, OpCreate, output, err)
	}

	logger.Info("created package", "file", output, "kind", info.Kind(), "took", time.Since(start).Round(time.Millisecond))

	return info, nil
}

// CreateUploadablePackage encrypts src straight into dst, without a container.
// The returned ApplicationInfo describes the payload; it is not written anywhere.
func (p *Packager) CreateUploadablePackage(
	ctx context.Context,
	src io.ReadSeeker,
	dst io.ReadWriteSeeker,
	details *metadata.ApplicationDetails,
) (*metadata.ApplicationInfo, error) {
	logger := p.logger.With("op", OpUpload)

	if src == nil || dst == nil {
		return nil, newError(OpUpload, "", ErrInvalidArgument, "source and destination streams are required")
	}

	_, size, err := streamBounds(src)
	if err != nil {
		return nil, newError(OpUpload, "", ErrInvalidArgument, "measuring source stream: %w", err)
	}

	info := metadata.New(details)
	if info.Name == "" && info.SetupFile != "" {
		info.Name = filepath.Base(info.SetupFile)
	}

	info.UnencryptedContentSize = size

	logger.Info("encrypting stream", "size", size)

	if info.EncryptionInfo, err = encryption.Encrypt(ctx, src, dst, encryption.WithKeySource(p.keys)); err != nil {
		return nil, p.fail(logger, OpUpload, "", err)
	}

	logger.Debug("encrypted stream", "name", info.Name)

	return info, nil
}

// encryptFile replaces the file at path with its encrypted payload.
func (p *Packager) encryptFile(ctx context.Context, path string) (_ *metadata.EncryptionInfo, err error) {
	tc, err := fileutil.NewTempContext(path, path)
	if err != nil {
		return nil, err
	}
	defer tc.CleanupOnError(&err)

	src, err := os.Open(path) //nolint:gosec // path is inside the work directory
	if err != nil {
		return nil, fmt.Errorf("opening payload: %w", err)
	}

	info, err := encryption.Encrypt(ctx, src, tc.TmpFile, encryption.WithKeySource(p.keys))

	if closeErr := src.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("closing payload: %w", closeErr)
	}

	if err != nil {
		return nil, err
	}

	if err := tc.Commit(0); err != nil {
		return nil, err
	}

	return info, nil
}

// fail wraps err with op and path and logs it. Cancellation is logged at warn level.
func (p *Packager) fail(logger *log.Logger, op, path string, err error) error {
	err = wrap(op, path, err)

	if IsCanceled(err) {
		logger.Warn("operation cancelled", "path", path)
	} else {
		logger.Error("operation failed", "path", path, "err", err)
	}

	return err
}

// cleanup removes the work directory. It runs even after cancellation.
func (p *Packager) cleanup(ctx context.Context, logger *log.Logger, work *fileutil.WorkDir) {
	if err := work.Remove(context.WithoutCancel(ctx)); err != nil {
		logger.Warn("removing temporary files", "dir", work.Path, "err", err)

		return
	}

	logger.Debug("removed temporary files", "dir", work.Path)
}

// streamBounds returns the current position and the length of s, restoring the position.
func streamBounds(s io.Seeker) (pos, size int64, err error) {
	if pos, err = s.Seek(0, io.SeekCurrent); err != nil {
		return 0, 0, err
	}

	if size, err = s.Seek(0, io.SeekEnd); err != nil {
		return 0, 0, err
	}

	if _, err = s.Seek(pos, io.SeekStart); err != nil {
		return 0, 0, err
	}

	return pos, size, nil
}
