package main

import (
	"fmt"
	"os"
	"time"

	"github.com/drobin/nuts/archive"
	"github.com/drobin/nuts/backend"
	"github.com/drobin/nuts/backend/directory"
	"github.com/drobin/nuts/container"
	"golang.org/x/term"
)

func nowTimestamp() archive.Timestamp {
	now := time.Now()
	return archive.Timestamp{Seconds: now.Unix(), Nanos: uint32(now.Nanosecond())}
}

const defaultBlockSize = 4096

// defaultSID is the single, fixed service id this CLI's archives use.
// A real multi-service container could let a caller pick one; the CLI
// only ever drives one archive per container, so a constant is enough.
const defaultSID uint64 = 1

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return term.ReadPassword(int(os.Stdin.Fd()))
	}
	var pw []byte
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if n == 1 && buf[0] == '\n' {
			break
		}
		if n == 1 {
			pw = append(pw, buf[0])
		}
		if err != nil {
			break
		}
	}
	return pw, nil
}

func openBackend(path string) (backend.Backend, error) {
	return directory.New(path, defaultBlockSize)
}

func openContainer(path string, noPassword bool) (backend.Backend, *container.Container, error) {
	be, err := openBackend(path)
	if err != nil {
		return nil, nil, err
	}
	opts := container.OpenOptions{NoMigration: true}
	if !noPassword {
		opts.PasswordCb = func() ([]byte, error) { return readPassword("password: ") }
	}
	c, err := container.Open(be, opts)
	if err != nil {
		return nil, nil, err
	}
	return be, c, nil
}
