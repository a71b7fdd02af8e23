package metadata

import (
	"fmt"
	"strings"
)

// ExecutionContext is the account an MSI installer runs under.
type ExecutionContext int

const (
	// ExecutionContextSystem runs the installer as the system account.
	ExecutionContextSystem ExecutionContext = iota
	// ExecutionContextUser runs the installer as the signed-in user.
	ExecutionContextUser
	// ExecutionContextAny lets the device decide.
	ExecutionContextAny
)

//nolint:gochecknoglobals
var executionContextNames = [...]string{"System", "User", "Any"}

func (c ExecutionContext) String() string {
	if c < 0 || int(c) >= len(executionContextNames) {
		return fmt.Sprintf("ExecutionContext(%d)", int(c))
	}

	return executionContextNames[c]
}

// ParseExecutionContext resolves a context by name, ignoring case.
func ParseExecutionContext(name string) (ExecutionContext, error) {
	for i, n := range executionContextNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return ExecutionContext(i), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownExecutionContext, name)
}

// MarshalText writes the context by name.
func (c ExecutionContext) MarshalText() ([]byte, error) {
	if c < 0 || int(c) >= len(executionContextNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownExecutionContext, int(c))
	}

	return []byte(c.String()), nil
}

// UnmarshalText reads a context name.
func (c *ExecutionContext) UnmarshalText(text []byte) error {
	parsed, err := ParseExecutionContext(string(text))
	if err != nil {
		return err
	}

	*c = parsed

	return nil
}

// MsiInfo holds the identity and capabilities of an MSI installer.
type MsiInfo struct {
	ProductCode                string           `xml:"MsiProductCode"`
	ProductVersion             string           `xml:"MsiProductVersion"`
	PackageCode                string           `xml:"MsiPackageCode"`
	Publisher                  string           `xml:"MsiPublisher"`
	UpgradeCode                string           `xml:"MsiUpgradeCode"`
	ExecutionContext           ExecutionContext `xml:"MsiExecutionContext"`
	RequiresLogon              bool             `xml:"MsiRequiresLogon"`
	RequiresReboot             bool             `xml:"MsiRequiresReboot"`
	IsMachineInstall           bool             `xml:"MsiIsMachineInstall"`
	IsUserInstall              bool             `xml:"MsiIsUserInstall"`
	IncludesServices           bool             `xml:"MsiIncludesServices"`
	IncludesODBCDataSource     bool             `xml:"MsiIncludesODBCDataSource"`
	ContainsSystemRegistryKeys bool             `xml:"MsiContainsSystemRegistryKeys"`
	ContainsSystemFolders      bool             `xml:"MsiContainsSystemFolders"`
}
