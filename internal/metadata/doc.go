// Package metadata describes an encrypted payload and the application it installs.
//
// The ApplicationInfo record is stored as Metadata/Detection.xml inside a container.
// It carries the EncryptionInfo needed to authenticate and decrypt the payload, and,
// for MSI installers, an MsiInfo record with the installer's identity and capabilities.
package metadata
