//go:build windows

package proc

import (
	"errors"
	"unsafe"

	"golang.org/x/sys/windows"
)

func snapshotProcessNames() (map[uint32]string, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, err
	}
	defer windows.CloseHandle(snap)

	names := make(map[uint32]string)
	var e windows.ProcessEntry32
	e.Size = uint32(unsafe.Sizeof(e))

	err = windows.Process32First(snap, &e)
	for err == nil {
		names[e.ProcessID] = windows.UTF16ToString(e.ExeFile[:])
		err = windows.Process32Next(snap, &e)
	}
	if !errors.Is(err, windows.ERROR_NO_MORE_FILES) {
		return nil, err
	}
	return names, nil
}

// imagePath returns the full executable path, or "" when the process
// cannot be opened (protected or exited).
func imagePath(pid uint32) string {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(h)

	buf := make([]uint16, windows.MAX_LONG_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return ""
	}
	return windows.UTF16ToString(buf[:size])
}

// newWindowsResolver takes one toolhelp snapshot for the call.
func newWindowsResolver() (resolveFunc, error) {
	return snapshotResolver("CreateToolhelp32Snapshot", snapshotProcessNames, imagePath)
}
