package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/usefultrainer/freeze/pkg/constants"
	"github.com/usefultrainer/freeze/pkg/logger"
	"github.com/usefultrainer/freeze/pkg/tty"
	"golang.org/x/term"
)

var ackLog = logger.New("console:acknowledge")

// WaitForKeypress prints the acknowledgement prompt to out and blocks until
// the user responds on in.
//
// When in is a terminal it is switched to raw mode and any single key is
// enough. Otherwise one line of input is consumed. End of input counts as an
// acknowledgement so a closed stdin never hangs the process.
func WaitForKeypress(in io.Reader, out io.Writer) error {
	fmt.Fprint(out, constants.AcknowledgePrompt)

	var err error
	if f, ok := in.(*os.File); ok && tty.IsTerminal(f) {
		err = readRawKey(f)
	} else {
		err = readLine(in)
	}
	fmt.Fprintln(out)
	return err
}

func readRawKey(f *os.File) error {
	fd := int(f.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		ackLog.Printf("Raw mode unavailable, falling back to line input: %v", err)
		return readLine(f)
	}
	defer func() {
		if err := term.Restore(fd, state); err != nil {
			ackLog.Printf("Failed to restore terminal state: %v", err)
		}
	}()

	buf := make([]byte, 1)
	if _, err := f.Read(buf); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read keypress: %w", err)
	}
	ackLog.Printf("Received keypress 0x%02x", buf[0])
	return nil
}

func readLine(in io.Reader) error {
	_, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read acknowledgement: %w", err)
	}
	ackLog.Printf("Acknowledged (eof=%t)", errors.Is(err, io.EOF))
	return nil
}
