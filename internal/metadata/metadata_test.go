package metadata_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/idelchi/intunewin/internal/metadata"
)

const detectionXML = `<ApplicationInfo xmlns:xsd="http://www.w3.org/2001/XMLSchema" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" ToolVersion="1.8.4.0">
  <Name>setup.msi</Name>
  <UnencryptedContentSize>2048</UnencryptedContentSize>
  <FileName>IntunePackage.intunewin</FileName>
  <SetupFile>setup.msi</SetupFile>
  <EncryptionInfo>
    <EncryptionKey>AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8=</EncryptionKey>
    <MacKey>HyAhIiMkJSYnKCkqKywtLi8wMTIzNDU2Nzg5Ojs8PT4=</MacKey>
    <InitializationVector>AAAAAAAAAAAAAAAAAAAAAA==</InitializationVector>
    <Mac>AQEBAQEBAQEBAQEBAQEBAQEBAQEBAQEBAQEBAQEBAQE=</Mac>
    <ProfileIdentifier>ProfileVersion1</ProfileIdentifier>
    <FileDigest>AgICAgICAgICAgICAgICAgICAgICAgICAgICAgICAgI=</FileDigest>
    <FileDigestAlgorithm>SHA256</FileDigestAlgorithm>
  </EncryptionInfo>
  <MsiInfo>
    <MsiProductCode>{11111111-2222-3333-4444-555555555555}</MsiProductCode>
    <MsiProductVersion>1.2.3</MsiProductVersion>
    <MsiPackageCode>{66666666-7777-8888-9999-000000000000}</MsiPackageCode>
    <MsiPublisher>Contoso</MsiPublisher>
    <MsiUpgradeCode>{AAAAAAAA-BBBB-CCCC-DDDD-EEEEEEEEEEEE}</MsiUpgradeCode>
    <MsiExecutionContext>User</MsiExecutionContext>
    <MsiRequiresLogon>false</MsiRequiresLogon>
    <MsiRequiresReboot>true</MsiRequiresReboot>
    <MsiIsMachineInstall>false</MsiIsMachineInstall>
    <MsiIsUserInstall>true</MsiIsUserInstall>
    <MsiIncludesServices>false</MsiIncludesServices>
    <MsiIncludesODBCDataSource>false</MsiIncludesODBCDataSource>
    <MsiContainsSystemRegistryKeys>false</MsiContainsSystemRegistryKeys>
    <MsiContainsSystemFolders>false</MsiContainsSystemFolders>
  </MsiInfo>
</ApplicationInfo>`

func TestParseMsiDocument(t *testing.T) {
	t.Parallel()

	info, err := metadata.Parse(strings.NewReader(detectionXML))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if info.Kind() != metadata.KindMsi {
		t.Errorf("Kind() = %v, want %v", info.Kind(), metadata.KindMsi)
	}

	if info.ToolVersion != metadata.ToolVersion {
		t.Errorf("ToolVersion = %q, want %q", info.ToolVersion, metadata.ToolVersion)
	}

	if info.UnencryptedContentSize != 2048 {
		t.Errorf("UnencryptedContentSize = %d, want 2048", info.UnencryptedContentSize)
	}

	if info.MsiInfo.ExecutionContext != metadata.ExecutionContextUser {
		t.Errorf("ExecutionContext = %v, want User", info.MsiInfo.ExecutionContext)
	}

	if !info.MsiInfo.RequiresReboot || info.MsiInfo.RequiresLogon {
		t.Errorf("unexpected MSI flags: %+v", info.MsiInfo)
	}

	if err := info.EncryptionInfo.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}

	keys, err := info.EncryptionInfo.Keys()
	if err != nil {
		t.Fatalf("Keys() error: %v", err)
	}

	if len(keys.EncryptionKey) != 32 || len(keys.MacKey) != 32 || len(keys.IV) != 16 {
		t.Errorf("unexpected key sizes: %d/%d/%d", len(keys.EncryptionKey), len(keys.MacKey), len(keys.IV))
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		details *metadata.ApplicationDetails
		kind    metadata.Kind
	}{
		{
			name:    "custom",
			details: &metadata.ApplicationDetails{Name: "Tool", SetupFile: `bin\setup.exe`},
			kind:    metadata.KindCustom,
		},
		{
			name: "msi",
			details: &metadata.ApplicationDetails{
				Name:        "Agent",
				Description: "line one & <two>",
				SetupFile:   "agent.msi",
				MsiInfo: &metadata.MsiInfo{
					ProductCode:      "{1}",
					ExecutionContext: metadata.ExecutionContextAny,
					IsMachineInstall: true,
				},
			},
			kind: metadata.KindMsi,
		},
		{
			name: "nil details",
			kind: metadata.KindCustom,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			info := metadata.New(tc.details)
			info.UnencryptedContentSize = 4096
			info.EncryptionInfo = metadata.NewEncryptionInfo(metadata.Material{
				EncryptionKey: bytes.Repeat([]byte{1}, 32),
				MacKey:        bytes.Repeat([]byte{2}, 32),
				IV:            bytes.Repeat([]byte{3}, 16),
				Mac:           bytes.Repeat([]byte{4}, 32),
				FileDigest:    bytes.Repeat([]byte{5}, 32),
			})

			var buf bytes.Buffer
			if err := metadata.Write(&buf, info); err != nil {
				t.Fatalf("Write() error: %v", err)
			}

			if strings.HasPrefix(buf.String(), "<?xml") {
				t.Errorf("document carries an XML declaration")
			}

			got, err := metadata.Parse(&buf)
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}

			if got.Kind() != tc.kind {
				t.Errorf("Kind() = %v, want %v", got.Kind(), tc.kind)
			}

			if got.Name != info.Name || got.Description != info.Description || got.SetupFile != info.SetupFile {
				t.Errorf("identity mismatch: got %+v, want %+v", got, info)
			}

			if got.FileName != metadata.EncryptedFileName {
				t.Errorf("FileName = %q, want %q", got.FileName, metadata.EncryptedFileName)
			}

			if *got.EncryptionInfo != *info.EncryptionInfo {
				t.Errorf("EncryptionInfo = %+v, want %+v", got.EncryptionInfo, info.EncryptionInfo)
			}

			if tc.kind == metadata.KindMsi && *got.MsiInfo != *info.MsiInfo {
				t.Errorf("MsiInfo = %+v, want %+v", got.MsiInfo, info.MsiInfo)
			}
		})
	}
}

func TestMarshalLayout(t *testing.T) {
	t.Parallel()

	info := metadata.New(&metadata.ApplicationDetails{Name: "setup.exe", SetupFile: "setup.exe"})
	info.EncryptionInfo = &metadata.EncryptionInfo{EncryptionKey: "k", MacKey: "m"}

	data, err := metadata.Marshal(info)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	doc := string(data)

	for _, want := range []string{
		`<ApplicationInfo xmlns:xsd="http://www.w3.org/2001/XMLSchema" ` +
			`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" ToolVersion="1.8.4.0">`,
		"<FileName>IntunePackage.intunewin</FileName>",
		"<EncryptionKey>k</EncryptionKey>",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q:\n%s", want, doc)
		}
	}

	for _, absent := range []string{"<Description>", "<MsiInfo>"} {
		if strings.Contains(doc, absent) {
			t.Errorf("document unexpectedly contains %q", absent)
		}
	}

	order := []string{"<Name>", "<UnencryptedContentSize>", "<FileName>", "<SetupFile>", "<EncryptionInfo>"}
	last := -1

	for _, el := range order {
		idx := strings.Index(doc, el)
		if idx < last {
			t.Errorf("element %s out of order", el)
		}

		last = idx
	}
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{name: "empty", doc: ""},
		{name: "malformed", doc: "<ApplicationInfo><Name>x</ApplicationInfo>"},
		{name: "wrong root", doc: "<Other/>"},
		{name: "missing encryption info", doc: `<ApplicationInfo ToolVersion="1.8.4.0"><Name>x</Name></ApplicationInfo>`},
		{name: "bad execution context", doc: `<ApplicationInfo><EncryptionInfo/>` +
			`<MsiInfo><MsiExecutionContext>Nobody</MsiExecutionContext></MsiInfo></ApplicationInfo>`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := metadata.Parse(strings.NewReader(tc.doc))
			if !errors.Is(err, metadata.ErrInvalidMetadata) {
				t.Errorf("Parse() error = %v, want ErrInvalidMetadata", err)
			}
		})
	}
}

func TestEncryptionInfoValidate(t *testing.T) {
	t.Parallel()

	valid := metadata.NewEncryptionInfo(metadata.Material{
		EncryptionKey: make([]byte, 32),
		MacKey:        make([]byte, 32),
	})

	tests := []struct {
		name   string
		mutate func(e *metadata.EncryptionInfo)
		ok     bool
	}{
		{name: "valid", mutate: func(*metadata.EncryptionInfo) {}, ok: true},
		{name: "no key", mutate: func(e *metadata.EncryptionInfo) { e.EncryptionKey = "" }},
		{name: "no mac key", mutate: func(e *metadata.EncryptionInfo) { e.MacKey = "" }},
		{name: "bad base64", mutate: func(e *metadata.EncryptionInfo) { e.Mac = "not base64!" }},
		{name: "other profile", mutate: func(e *metadata.EncryptionInfo) { e.ProfileIdentifier = "ProfileVersion2" }},
		{name: "other digest", mutate: func(e *metadata.EncryptionInfo) { e.FileDigestAlgorithm = "MD5" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			info := *valid
			tc.mutate(&info)

			err := info.Validate()
			if tc.ok && err != nil {
				t.Errorf("Validate() error: %v", err)
			}

			if !tc.ok && !errors.Is(err, metadata.ErrInvalidMetadata) {
				t.Errorf("Validate() error = %v, want ErrInvalidMetadata", err)
			}
		})
	}

	var missing *metadata.EncryptionInfo
	if err := missing.Validate(); !errors.Is(err, metadata.ErrInvalidMetadata) {
		t.Errorf("nil Validate() error = %v, want ErrInvalidMetadata", err)
	}
}

func TestExecutionContext(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"System", "user", " ANY "} {
		if _, err := metadata.ParseExecutionContext(name); err != nil {
			t.Errorf("ParseExecutionContext(%q) error: %v", name, err)
		}
	}

	if _, err := metadata.ParseExecutionContext("root"); !errors.Is(err, metadata.ErrUnknownExecutionContext) {
		t.Errorf("ParseExecutionContext(root) error = %v, want ErrUnknownExecutionContext", err)
	}

	if _, err := metadata.ExecutionContext(7).MarshalText(); err == nil {
		t.Error("MarshalText() accepted an out of range context")
	}
}
