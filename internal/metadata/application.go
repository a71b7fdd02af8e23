package metadata

import "encoding/xml"

const (
	// ToolVersion is the packaging tool version recorded in every document.
	ToolVersion = "1.8.4.0"
	// EncryptedFileName is the name of the payload entry inside a container.
	EncryptedFileName = "IntunePackage.intunewin"

	xmlSchemaNS         = "http://www.w3.org/2001/XMLSchema"
	xmlSchemaInstanceNS = "http://www.w3.org/2001/XMLSchema-instance"
)

// Kind distinguishes the installer variants an ApplicationInfo can describe.
type Kind int

const (
	// KindCustom is any installer without installer-specific metadata.
	KindCustom Kind = iota
	// KindMsi is a Windows Installer package carrying MsiInfo.
	KindMsi
)

func (k Kind) String() string {
	if k == KindMsi {
		return "msi"
	}

	return "custom"
}

// ApplicationDetails is the caller-supplied input for building an ApplicationInfo.
type ApplicationDetails struct {
	// Name overrides the application name. Defaults to the setup file name.
	Name string
	// Description is optional free text.
	Description string
	// SetupFile is the installer path relative to the packaged tree.
	SetupFile string
	// MsiInfo, when set, makes the application an MSI application.
	MsiInfo *MsiInfo
}

// ApplicationInfo is the root of the metadata document.
// The MsiInfo element is present only for KindMsi applications.
type ApplicationInfo struct {
	XMLName                xml.Name        `xml:"ApplicationInfo"`
	XMLSchema              string          `xml:"xmlns:xsd,attr"`
	XMLSchemaInstance      string          `xml:"xmlns:xsi,attr"`
	ToolVersion            string          `xml:"ToolVersion,attr"`
	Name                   string          `xml:"Name"`
	Description            string          `xml:"Description,omitempty"`
	UnencryptedContentSize int64           `xml:"UnencryptedContentSize"`
	FileName               string          `xml:"FileName"`
	SetupFile              string          `xml:"SetupFile"`
	EncryptionInfo         *EncryptionInfo `xml:"EncryptionInfo"`
	MsiInfo                *MsiInfo        `xml:"MsiInfo,omitempty"`
}

// New builds an ApplicationInfo for the payload entry from the caller's details.
// Details may be nil.
func New(details *ApplicationDetails) *ApplicationInfo {
	info := &ApplicationInfo{
		ToolVersion: ToolVersion,
		FileName:    EncryptedFileName,
	}

	info.setNamespaces()

	if details != nil {
		info.Name = details.Name
		info.Description = details.Description
		info.SetupFile = details.SetupFile

		if details.MsiInfo != nil {
			msi := *details.MsiInfo
			info.MsiInfo = &msi
		}
	}

	return info
}

// Kind reports the installer variant.
func (a *ApplicationInfo) Kind() Kind {
	if a.MsiInfo != nil {
		return KindMsi
	}

	return KindCustom
}

func (a *ApplicationInfo) setNamespaces() {
	if a.XMLSchema == "" {
		a.XMLSchema = xmlSchemaNS
	}

	if a.XMLSchemaInstance == "" {
		a.XMLSchemaInstance = xmlSchemaInstanceNS
	}
}
