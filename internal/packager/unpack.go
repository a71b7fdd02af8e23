package packager

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/idelchi/intunewin/internal/archive"
	"github.com/idelchi/intunewin/internal/encryption"
	"github.com/idelchi/intunewin/internal/fileutil"
	"github.com/idelchi/intunewin/internal/metadata"
)

// maxMetadataSize bounds the Detection.xml read by ReadMetadata.
const maxMetadataSize = 1 << 20

// Unpack extracts the original files of packageFile into outputDir, which must exist,
// and returns the container's metadata.
// Extraction happens entry by entry; a cancelled run may leave some files in outputDir.
func (p *Packager) Unpack(ctx context.Context, packageFile, outputDir string) (*metadata.ApplicationInfo, error) {
	start := time.Now()
	logger := p.logger.With("op", OpUnpack, "package", packageFile)

	if err := checkUnpack(packageFile, outputDir); err != nil {
		logger.Error("invalid arguments", "err", err)

		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, wrap(OpUnpack, packageFile, err)
	}

	logger.Info("unpacking package", "output", outputDir)

	work, err := fileutil.NewWorkDir(p.tempDir)
	if err != nil {
		return nil, p.fail(logger, OpUnpack, p.tempDir, err)
	}
	defer p.cleanup(ctx, logger, work)

	if err := archive.ExtractFile(ctx, packageFile, work.Path); err != nil {
		return nil, p.fail(logger, OpUnpack, packageFile, err)
	}

	detection := work.Join(PackageFolder, MetadataFolder, DetectionFile)

	info, err := metadata.ParseFile(detection)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = newError(OpUnpack, packageFile, ErrInvalidData, "container has no %s: %w", DetectionEntry, err)
		}

		return nil, p.fail(logger, OpUnpack, packageFile, err)
	}

	name, ok := payloadName(info)
	if !ok {
		return nil, p.fail(logger, OpUnpack, packageFile,
			newError(OpUnpack, packageFile, ErrInvalidData, "invalid payload file name %q", info.FileName))
	}

	payload, err := os.Open(work.Join(PackageFolder, ContentsFolder, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = newError(OpUnpack, packageFile, ErrInvalidData, "container has no payload %q: %w", name, err)
		}

		return nil, p.fail(logger, OpUnpack, packageFile, err)
	}
	defer payload.Close()

	if err := p.decryptAndExtract(ctx, logger, payload, outputDir, info.EncryptionInfo); err != nil {
		return nil, p.fail(logger, OpUnpack, packageFile, err)
	}

	logger.Info("unpacked package", "name", info.Name, "setup", info.SetupFile, "took", time.Since(start).Round(time.Millisecond))

	return info, nil
}

// DecryptAndUnpackStreamToFolder authenticates and decrypts the payload in src and extracts
// its files into outputDir, which is created when missing.
func (p *Packager) DecryptAndUnpackStreamToFolder(
	ctx context.Context,
	src io.ReadSeeker,
	outputDir string,
	info *metadata.EncryptionInfo,
) error {
	logger := p.logger.With("op", OpDecrypt, "output", outputDir)

	switch {
	case src == nil:
		return newError(OpDecrypt, outputDir, ErrInvalidArgument, "source stream is required")
	case outputDir == "":
		return newError(OpDecrypt, "", ErrInvalidArgument, "output directory is required")
	case info == nil:
		return newError(OpDecrypt, outputDir, ErrInvalidArgument, "encryption info is required")
	}

	pos, end, err := streamBounds(src)
	if err != nil {
		return newError(OpDecrypt, outputDir, ErrInvalidArgument, "measuring source stream: %w", err)
	}

	if size := end - pos; size < encryption.MinPayloadSize {
		return newError(OpDecrypt, outputDir, ErrInvalidData,
			"payload of %d bytes is shorter than the minimum of %d", size, encryption.MinPayloadSize)
	}

	if err := os.MkdirAll(outputDir, dirPerm); err != nil {
		return p.fail(logger, OpDecrypt, outputDir, err)
	}

	if err := p.decryptAndExtract(ctx, logger, src, outputDir, info); err != nil {
		return p.fail(logger, OpDecrypt, outputDir, err)
	}

	return nil
}

// ReadMetadata returns the metadata document of packageFile without decrypting anything.
func (p *Packager) ReadMetadata(ctx context.Context, packageFile string) (*metadata.ApplicationInfo, error) {
	logger := p.logger.With("op", OpReadMeta, "package", packageFile)

	if packageFile == "" {
		return nil, newError(OpReadMeta, "", ErrInvalidArgument, "package file is required")
	}

	if err := requireFile(packageFile, "package file"); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, wrap(OpReadMeta, packageFile, err)
	}

	data, err := archive.ReadEntry(packageFile, DetectionEntry, maxMetadataSize)
	if err != nil {
		return nil, p.fail(logger, OpReadMeta, packageFile, err)
	}

	info, err := metadata.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, p.fail(logger, OpReadMeta, packageFile, err)
	}

	logger.Debug("read metadata", "name", info.Name, "kind", info.Kind())

	return info, nil
}

func (p *Packager) decryptAndExtract(
	ctx context.Context,
	logger *log.Logger,
	src io.ReadSeeker,
	outputDir string,
	info *metadata.EncryptionInfo,
) error {
	if err := info.Validate(); err != nil {
		return err
	}

	logger.Debug("decrypting payload")

	plain, err := encryption.Decrypt(ctx, src, info.EncryptionKey, info.MacKey)
	if err != nil {
		return err
	}

	if err := verifyDigest(plain, info); err != nil {
		return err
	}

	logger.Debug("extracting payload", "size", plain.Size())

	return archive.Extract(ctx, plain, plain.Size(), outputDir)
}

// verifyDigest compares the SHA-256 of the decrypted archive with the recorded digest,
// when one is recorded, and rewinds plain.
func verifyDigest(plain *bytes.Reader, info *metadata.EncryptionInfo) error {
	material, err := info.Keys()
	if err != nil {
		return err
	}

	if len(material.FileDigest) == 0 {
		return nil
	}

	digest := sha256.New()
	if _, err := plain.WriteTo(digest); err != nil {
		return err
	}

	if _, err := plain.Seek(0, io.SeekStart); err != nil {
		return err
	}

	if subtle.ConstantTimeCompare(digest.Sum(nil), material.FileDigest) != 1 {
		return newError(OpDecrypt, "", ErrInvalidData, "file digest does not match")
	}

	return nil
}
