// Package packager builds and opens .intunewin containers.
//
// A container is a zip holding a single root folder:
//
//	IntuneWinPackage/
//	  Contents/IntunePackage.intunewin   encrypted, stored zip of the source tree
//	  Metadata/Detection.xml             ApplicationInfo with the key material
//
// CreatePackage and Unpack work on files. CreateUploadablePackage and
// DecryptAndUnpackStreamToFolder work on the bare encrypted payload, which is what
// the upload service accepts and what a device downloads.
package packager
