package packager

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/idelchi/intunewin/internal/metadata"
)

// Container layout.
const (
	PackageFolder  = "IntuneWinPackage"
	ContentsFolder = "Contents"
	MetadataFolder = "Metadata"
	DetectionFile  = "Detection.xml"
	Extension      = ".intunewin"
)

// DetectionEntry is the zip entry name of the metadata document inside a container.
var DetectionEntry = path.Join(PackageFolder, MetadataFolder, DetectionFile) //nolint:gochecknoglobals // derived constant

// OutputFileName returns the container path CreatePackage writes for setupFile.
func OutputFileName(setupFile, outputDir string) string {
	base := filepath.Base(setupFile)

	return filepath.Join(outputDir, strings.TrimSuffix(base, filepath.Ext(base))+Extension)
}

// payloadName returns the payload file name recorded in info, or the default.
func payloadName(info *metadata.ApplicationInfo) (string, bool) {
	name := info.FileName
	if name == "" {
		return metadata.EncryptedFileName, true
	}

	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", false
	}

	return name, true
}
