//go:build windows

package internal

import (
	"syscall"
	"unsafe"
)

// skipSystemLocale disables the Windows API lookup so tests only see env vars.
var skipSystemLocale = false

var (
	kernel32                 = syscall.NewLazyDLL("kernel32.dll")
	procGetUserDefaultLocale = kernel32.NewProc("GetUserDefaultLocaleName")
)

// detectSystemLocale prefers the Unix-style env vars (set under WSL and in
// tests) and falls back to GetUserDefaultLocaleName.
func detectSystemLocale() string {
	if locale := localeFromEnv("LC_MONETARY", "LC_ALL", "LANG"); locale != "" {
		return locale
	}
	if skipSystemLocale {
		return ""
	}

	const localeNameMaxLength = 85
	buf := make([]uint16, localeNameMaxLength)
	ret, _, _ := procGetUserDefaultLocale.Call(uintptr(unsafe.Pointer(&buf[0])), uintptr(localeNameMaxLength))
	if ret == 0 {
		return ""
	}
	return syscall.UTF16ToString(buf)
}
