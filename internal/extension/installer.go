package extension

import "context"

// Installer is the out-of-core collaborator that turns a package
// specifier into an installed tree on disk (spec §1's "Extension
// package downloading/installing" is explicitly external; this package
// only defines the contract and the bounded-retry caller around it).
type Installer interface {
	// Install fetches packageSpec and unpacks it under targetDir,
	// returning once targetDir contains an importable/loadable tree.
	Install(ctx context.Context, packageSpec, targetDir string) error
}

// NoInstaller is the zero-value Installer: every external entry fails
// with ExtensionInstallationFailure. Used when the host process hasn't
// wired a real installer (e.g. the CLI/MCP binary runs with only
// intrinsic processors by default).
type NoInstaller struct{}

func (NoInstaller) Install(_ context.Context, packageSpec, _ string) error {
	return errNoInstaller{pkg: packageSpec}
}

type errNoInstaller struct{ pkg string }

func (e errNoInstaller) Error() string {
	return "no installer configured for external extension package " + e.pkg
}
