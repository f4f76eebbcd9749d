// Package config loads the togetter configuration file.
//
// # Configuration Discovery
//
// Load follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/togetter/config.toml
//  3. If the file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing or blank, use defaults
//
// # TOML Format
//
//	variant = "v3"
//	format = ""
//	log_level = "info"
//
//	[device]
//	host = "127.0.0.1:7488"
//	resync = "@every 15s"
//	long_press = ""
//	activation = ""
//	reselect = ""
//	log_file = "~/.local/state/togetter/device.log"
//	theme = "Nightfox"
//
//	[host]
//	listen = "127.0.0.1:7488"
//	source = "file"
//	api_url = "http://to-get.appspot.com"
//	poll = "@every 1m"
//	list_file = "~/.config/togetter/lists.toml"
//	settings_path = "~/.config/togetter/settings.toml"
//
// variant picks a preset (v1, v2 or v3). format, device.long_press,
// device.activation (toggle, skip-zero or select-zero) and device.reselect
// override single fields of that preset and are validated by SessionVariant,
// not by Load.
//
// # Path Expansion
//
// Tilde paths are expanded and relative paths made absolute for the config
// file itself, device.log_file, host.list_file and host.settings_path.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, TOML parse errors and an unknown host.source. A missing file
// is not an error.
package config
