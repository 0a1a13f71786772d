// Package winresources is used to embed Windows resources into
// vecart-deploy.exe.
//
// The resource object (resource.syso) carries version information and is
// generated by goversioninfo through go:generate in the parent package.
// It is picked up automatically when building for Windows.
package winresources
