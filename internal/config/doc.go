// Package config provides user configuration management for gecko-decode.
//
// This package manages a YAML-based configuration file that stores decode
// defaults (revision, output format, trace, header skip) and per-controller
// metadata: a nickname, the structure revision or catalog file the
// controller's frames decode against, and when it was last decoded. The
// configuration follows OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/gecko-decode/config.yaml or $HOME/.config/gecko-decode/config.yaml
//   - macOS: $HOME/.config/gecko-decode/config.yaml
//   - Windows: %LOCALAPPDATA%\gecko-decode\config.yaml
//
// LoadFrom reads an explicit path instead (the CLI's --config flag).
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    return err
//	}
//
//	registry.SetControllerRevision("pool-house", "inyt-log-65")
//	registry.SetControllerNickname("pool-house", "Pool House Spa")
//
//	if err := registry.Save(); err != nil {
//	    return err
//	}
//
//	rev := registry.ResolveRevision("pool-house") // "inyt-log-65"
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes. Registry
// values themselves are not synchronized.
package config
