package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

type BasicStruct struct {
	X int
	y string
}

type StructWithStruct struct {
	x int
	Y BasicStruct
}

func newBufferLogger(name string, level Level) (*impl, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return &impl{name, NewAtomicLevelAt(level), true, []Appender{NewWriterAppender(buf)}}, buf
}

// assertLogMatches will fuzzy match log lines. It checks the time format but not the exact time, and expects
// the caller's filename to match while ignoring its line number.
func assertLogMatches(t *testing.T, actual *bytes.Buffer, expected string) {
	t.Helper()

	output, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	actualParts := strings.Split(strings.TrimSuffix(output, "\n"), "\t")
	expectedParts := strings.Split(expected, "\t")
	test.That(t, len(actualParts), test.ShouldEqual, len(expectedParts))
	// The length of the time string is a weak check that it looks like a date.
	test.That(t, len(actualParts[0]), test.ShouldEqual, len(expectedParts[0]))
	// Level and logger name.
	test.That(t, actualParts[1], test.ShouldEqual, expectedParts[1])
	test.That(t, actualParts[2], test.ShouldEqual, expectedParts[2])

	actualFilename, actualLineNumber, found := strings.Cut(actualParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	expectedFilename, _, found := strings.Cut(expectedParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, actualFilename, test.ShouldEqual, expectedFilename)
	_, err = strconv.Atoi(actualLineNumber)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, actualParts[4], test.ShouldEqual, expectedParts[4])
	if len(actualParts) == 5 {
		return
	}

	// Compare structured fields as maps.
	expectedMap := make(map[string]any)
	test.That(t, json.Unmarshal([]byte(expectedParts[5]), &expectedMap), test.ShouldBeNil)
	actualMap := make(map[string]any)
	test.That(t, json.Unmarshal([]byte(actualParts[5]), &actualMap), test.ShouldBeNil)
	test.That(t, actualMap, test.ShouldResemble, expectedMap)
}

func TestConsoleOutputFormat(t *testing.T) {
	logger, buf := newBufferLogger("impl", DEBUG)

	logger.Info("impl Info log")
	assertLogMatches(t, buf,
		`2023-10-30T09:12:09.459Z	INFO	impl	logging/impl_test.go:67	impl Info log`)

	logger.Warnf("impl %s log", "warnf")
	assertLogMatches(t, buf,
		`2023-10-30T09:12:09.459Z	WARN	impl	logging/impl_test.go:72	impl warnf log`)

	logger.Debugw("impl logw", "key", "value", "tick", 3)
	assertLogMatches(t, buf,
		`2023-10-30T09:12:09.459Z	DEBUG	impl	logging/impl_test.go:77	impl logw	{"key":"value","tick":3}`)

	// Only exported fields are encoded.
	logger.Errorw("nested", "StructWithStruct", StructWithStruct{1, BasicStruct{2, "y"}})
	assertLogMatches(t, buf,
		`2023-10-30T09:12:09.459Z	ERROR	impl	logging/impl_test.go:82	nested	{"StructWithStruct":{"Y":{"X":2}}}`)

	logger.Infow("unpaired", "lonely")
	assertLogMatches(t, buf,
		`2023-10-30T09:12:09.459Z	INFO	impl	logging/impl_test.go:87	unpaired	{"lonely":"unpaired log key"}`)
}

func TestLevels(t *testing.T) {
	logger, buf := newBufferLogger("levels", WARN)

	logger.Debug("hidden")
	logger.Info("hidden")
	test.That(t, buf.Len(), test.ShouldEqual, 0)

	logger.Warn("shown")
	test.That(t, buf.String(), test.ShouldContainSubstring, "shown")
	buf.Reset()

	logger.SetLevel(ERROR)
	test.That(t, logger.GetLevel(), test.ShouldEqual, ERROR)
	logger.Warn("hidden")
	test.That(t, buf.Len(), test.ShouldEqual, 0)

	t.Run("context debug mode", func(t *testing.T) {
		logger.CDebugw(context.Background(), "hidden")
		test.That(t, buf.Len(), test.ShouldEqual, 0)

		ctx := EnableDebugMode(context.Background(), "")
		test.That(t, IsDebugMode(ctx), test.ShouldBeTrue)
		test.That(t, len(GetName(ctx)), test.ShouldEqual, 6)
		logger.CDebugf(ctx, "shown %d", 1)
		test.That(t, buf.String(), test.ShouldContainSubstring, "shown 1")
		buf.Reset()
	})

	t.Run("global debug level", func(t *testing.T) {
		GlobalLogLevel.SetLevel(zapcore.DebugLevel)
		defer GlobalLogLevel.SetLevel(zapcore.InfoLevel)
		logger.Debug("shown")
		test.That(t, buf.String(), test.ShouldContainSubstring, "shown")
	})
}

func TestSublogger(t *testing.T) {
	logger, buf := newBufferLogger("flock", INFO)
	sub := logger.Sublogger("tick")
	test.That(t, sub.GetLevel(), test.ShouldEqual, INFO)

	sub.SetLevel(ERROR)
	test.That(t, logger.GetLevel(), test.ShouldEqual, INFO)

	sub.Error("from sub")
	parts := strings.Split(buf.String(), "\t")
	test.That(t, parts[2], test.ShouldEqual, "flock.tick")

	unnamed := &impl{"", NewAtomicLevelAt(INFO), true, nil}
	test.That(t, unnamed.Sublogger("tick").(*impl).name, test.ShouldEqual, "tick")
}

func TestObservedTestLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Infow("committed", "agents", 3)
	logger.Debug("noise")

	test.That(t, logs.Len(), test.ShouldEqual, 2)
	entries := logs.FilterMessage("committed").All()
	test.That(t, len(entries), test.ShouldEqual, 1)
	test.That(t, entries[0].ContextMap()["agents"], test.ShouldEqual, int64(3))
	test.That(t, logger.Sync(), test.ShouldBeNil)
}

func TestLevelFromString(t *testing.T) {
	for _, tc := range []struct {
		in       string
		expected Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warning", WARN},
		{"error", ERROR},
	} {
		level, err := LevelFromString(tc.in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.expected)
		test.That(t, level.AsZap().String(), test.ShouldEqual, strings.ToLower(tc.expected.String()))
	}

	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestConstructorLevels(t *testing.T) {
	test.That(t, NewLogger("info").GetLevel(), test.ShouldEqual, INFO)
	debug := NewDebugLogger("debug")
	test.That(t, debug.GetLevel(), test.ShouldEqual, DEBUG)
	test.That(t, debug.Sublogger("sub").GetLevel(), test.ShouldEqual, DEBUG)
}
