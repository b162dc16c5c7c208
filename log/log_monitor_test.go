package log_test

import (
	"testing"
	"time"

	"github.com/briwylde08/dead-mans-draw/log"
	qt "github.com/frankban/quicktest"
)

// TestLogPanicOnErrorHook checks that the panic-on-error hook fires its
// handler for Error-level logs but stays quiet below that level, and that
// RestoreLogger removes the hook.
func TestLogPanicOnErrorHook(t *testing.T) {
	c := qt.New(t)

	c.Run("fires on log.Error", func(c *qt.C) {
		ch := make(chan string, 1)
		previous := log.EnablePanicOnErrorWithHandler(c.Name(), 50*time.Millisecond, func(msg string) {
			ch <- msg
		})
		defer log.RestoreLogger(previous)

		log.Error("boom")

		select {
		case got := <-ch:
			c.Assert(got, qt.Matches, `error log during test .*: boom`)
		case <-time.After(time.Second):
			c.Fatalf("expected handler to fire for an error log")
		}
	})

	c.Run("fires on log.Errorw", func(c *qt.C) {
		ch := make(chan string, 1)
		previous := log.EnablePanicOnErrorWithHandler(c.Name(), 50*time.Millisecond, func(msg string) {
			ch <- msg
		})
		defer log.RestoreLogger(previous)

		log.Errorw(nil, "wrapped error")

		select {
		case got := <-ch:
			c.Assert(got, qt.Matches, `error log during test .*: wrapped error`)
		case <-time.After(time.Second):
			c.Fatalf("expected handler to fire for an errorw log")
		}
	})

	c.Run("stays quiet below error level", func(c *qt.C) {
		ch := make(chan string, 1)
		previous := log.EnablePanicOnErrorWithHandler(c.Name(), 50*time.Millisecond, func(msg string) {
			ch <- msg
		})
		defer log.RestoreLogger(previous)

		log.Warn("just a warning")
		log.Info("just info")

		select {
		case got := <-ch:
			c.Fatalf("unexpected handler call: %s", got)
		case <-time.After(200 * time.Millisecond):
		}
	})

	c.Run("restored logger stays quiet", func(c *qt.C) {
		ch := make(chan string, 1)
		previous := log.EnablePanicOnErrorWithHandler(c.Name(), 50*time.Millisecond, func(msg string) {
			ch <- msg
		})
		log.RestoreLogger(previous)

		log.Error("should not reach the removed hook")

		select {
		case got := <-ch:
			c.Fatalf("unexpected handler call after restore: %s", got)
		case <-time.After(200 * time.Millisecond):
		}
	})
}
