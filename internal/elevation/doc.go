// Package elevation checks for administrative rights and relaunches the
// current executable through the host's elevation prompt: UAC via
// PowerShell Start-Process on Windows, sudo elsewhere.
package elevation
