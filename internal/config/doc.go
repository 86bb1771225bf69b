// Package config reads cdshelf settings from TOML.
//
// Load looks at an explicit path first, then ~/.config/cdshelf/config.toml,
// then ./cdshelf.toml, and falls back to Default when none exists. Values are
// normalized (paths expanded and made absolute, names lowercased) and then
// validated, so a *Config returned without error is ready to hand to the
// slot, catalog and logging packages. CDSHELF_DATA_DIR and CDSHELF_LOG_LEVEL
// override the file.
package config
