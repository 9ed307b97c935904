// SPDX-License-Identifier: MPL-2.0

package platform

import "runtime"

// Shell describes the command-line interpreter used to dispatch a hook
// or script on the current platform.
type Shell struct {
	// Name is the interpreter executable looked up on PATH.
	Name string
	// Args are the interpreter flags that precede the command string.
	Args []string
}

// HookShell returns the shell used to run lifecycle hook command lines.
// Unix-like systems use `sh -c`; Windows uses `powershell -Command`.
func HookShell() Shell {
	return hookShellFor(runtime.GOOS)
}

func hookShellFor(goos string) Shell {
	if goos == Windows {
		return Shell{Name: "powershell", Args: []string{"-Command"}}
	}
	return Shell{Name: "sh", Args: []string{"-c"}}
}
