package app

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

const logPrefix = "[APRX] "

// console prints progress lines to out and warnings to errOut, with
// coloured level tags
type console struct {
	logger    *log.Logger
	errLogger *log.Logger
	info      *color.Color
	ok        *color.Color
	warn      *color.Color
}

func newConsole(out, errOut io.Writer) *console {
	c := &console{
		logger:    log.New(out, logPrefix, log.LstdFlags),
		errLogger: log.New(errOut, logPrefix, log.LstdFlags),
		info:      color.New(color.FgCyan),
		ok:        color.New(color.FgGreen),
		warn:      color.New(color.FgYellow),
	}
	if !colorEnabled(out) {
		c.info.DisableColor()
		c.ok.DisableColor()
	}
	if !colorEnabled(errOut) {
		c.warn.DisableColor()
	}
	return c
}

func colorEnabled(out io.Writer) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (c *console) Infof(format string, args ...interface{}) {
	c.logger.Printf("%s %s", c.info.Sprint("INFO"), fmt.Sprintf(format, args...))
}

func (c *console) OKf(format string, args ...interface{}) {
	c.logger.Printf("%s %s", c.ok.Sprint("OK  "), fmt.Sprintf(format, args...))
}

func (c *console) Warnf(format string, args ...interface{}) {
	c.errLogger.Printf("%s %s", c.warn.Sprint("WARN"), fmt.Sprintf(format, args...))
}
