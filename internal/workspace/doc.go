// Package workspace locates the project on the host and maps host
// directories onto the sandbox mount.
//
// # Project Root
//
// FindRoot walks up from the current directory. The nearest directory
// holding espbox.toml wins; failing that, the nearest holding Cargo.toml;
// failing both, the starting directory itself.
//
// # Path Mapping
//
// The project root is bind-mounted at /project. Map re-expresses a host
// directory inside the project as the same subpath under the mount:
//
//	workspace.Map("/home/me/fw", "/project", "/home/me/fw/app/src")
//	// "/project/app/src"
//
// Directories outside the project root (after resolving symlinks) are
// rejected with a PathOutsideProject error.
package workspace
