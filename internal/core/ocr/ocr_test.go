package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/joseph-ayodele/screenchat/internal/common"
	"github.com/joseph-ayodele/screenchat/internal/result"
)

type fakeRunner struct {
	stdout string
	stderr string
	err    error
	onRun  func(name string, args []string) error
	calls  [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, _ *slog.Logger, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.onRun != nil {
		if err := f.onRun(name, args); err != nil {
			return nil, []byte(f.stderr), err
		}
	}
	return []byte(f.stdout), []byte(f.stderr), f.err
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for x := 0; x < 8; x++ {
		img.Set(x, 1, color.Black)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func newTestExtractor(cfg Config, r Runner) *Extractor {
	return NewExtractor(cfg, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))).WithRunner(r)
}

func TestExtract_HelloWorld(t *testing.T) {
	path := writeFile(t, "shot.png", pngBytes(t))
	r := &fakeRunner{stdout: "  Hello World \n\n\f"}
	res := newTestExtractor(Config{}, r).Extract(context.Background(), Image{Path: path})

	if !res.OK() {
		t.Fatalf("unexpected failure: %v", res.Err())
	}
	if res.Text != "Hello World" {
		t.Fatalf("expected trimmed transcript, got %q", res.Text)
	}
	want := [][]string{{"tesseract", path, "stdout"}}
	if !reflect.DeepEqual(r.calls, want) {
		t.Fatalf("runner calls = %v, want %v", r.calls, want)
	}
}

func TestExtract_NoTextIsEmptySuccess(t *testing.T) {
	path := writeFile(t, "blank.png", pngBytes(t))
	res := newTestExtractor(Config{}, &fakeRunner{stdout: " \n\f"}).Extract(context.Background(), Image{Path: path})
	if !res.OK() {
		t.Fatalf("blank image must not be an error: %v", res.Err())
	}
	if res.Text != "" || res.Display() != "" {
		t.Fatalf("expected empty transcript, got %q", res.Text)
	}
}

func TestExtract_CorruptImage(t *testing.T) {
	path := writeFile(t, "broken.png", []byte("definitely not a png"))
	r := &fakeRunner{stdout: "should not run"}
	res := newTestExtractor(Config{}, r).Extract(context.Background(), Image{Path: path})

	if res.Kind() != result.DecodeError {
		t.Fatalf("expected DecodeError, got %s", res.Kind())
	}
	if !strings.HasPrefix(res.Display(), "[OCR ERROR] ") {
		t.Fatalf("expected OCR marker, got %q", res.Display())
	}
	if len(r.calls) != 0 {
		t.Fatalf("tesseract must not run on undecodable input: %v", r.calls)
	}
}

func TestExtract_MissingFile(t *testing.T) {
	res := newTestExtractor(Config{}, &fakeRunner{}).Extract(context.Background(),
		Image{Path: filepath.Join(t.TempDir(), "nope.png")})
	if res.Kind() != result.DecodeError {
		t.Fatalf("expected DecodeError, got %s", res.Kind())
	}
	if !errors.Is(res.Err(), os.ErrNotExist) {
		t.Fatalf("expected wrapped not-exist error, got %v", res.Err())
	}
}

func TestExtract_NoImage(t *testing.T) {
	res := newTestExtractor(Config{}, &fakeRunner{}).Extract(context.Background(), Image{})
	if res.Kind() != result.DecodeError {
		t.Fatalf("expected DecodeError, got %s", res.Kind())
	}
}

func TestExtract_BackendUnavailable(t *testing.T) {
	path := writeFile(t, "shot.png", pngBytes(t))
	cases := []struct {
		name string
		r    *fakeRunner
	}{
		{"binary missing", &fakeRunner{err: &exec.Error{Name: "tesseract", Err: exec.ErrNotFound}}},
		{"language data missing", &fakeRunner{
			err:    errors.New("exit status 1"),
			stderr: "Error opening data file /usr/share/tessdata/xyz.traineddata\nFailed loading language 'xyz'",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := newTestExtractor(Config{}, tc.r).Extract(context.Background(), Image{Path: path})
			if res.Kind() != result.BackendUnavailable {
				t.Fatalf("expected BackendUnavailable, got %s (%v)", res.Kind(), res.Err())
			}
			if !strings.HasPrefix(res.Display(), "[OCR ERROR] ") {
				t.Fatalf("expected OCR marker, got %q", res.Display())
			}
		})
	}
}

func TestExtract_TesseractReadFailure(t *testing.T) {
	path := writeFile(t, "shot.png", pngBytes(t))
	r := &fakeRunner{err: errors.New("exit status 1"), stderr: "Error in pixReadStream: Unknown format: no pix returned\nmore"}
	res := newTestExtractor(Config{}, r).Extract(context.Background(), Image{Path: path})
	if res.Kind() != result.DecodeError {
		t.Fatalf("expected DecodeError, got %s", res.Kind())
	}
	if !strings.Contains(res.Failure.Detail, "pixReadStream") || strings.Contains(res.Failure.Detail, "more") {
		t.Fatalf("detail should carry the first stderr line only: %q", res.Failure.Detail)
	}
}

func TestExtract_CanceledContext(t *testing.T) {
	path := writeFile(t, "shot.png", pngBytes(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := newTestExtractor(Config{}, &fakeRunner{err: errors.New("signal: killed")}).Extract(ctx, Image{Path: path})
	if res.Kind() == result.BackendUnavailable {
		t.Fatal("a cancelled run must not be reported as a missing backend")
	}
	if res.Kind() != result.DecodeError {
		t.Fatalf("expected DecodeError, got %s", res.Kind())
	}
	if !strings.HasPrefix(res.Failure.Detail, "canceled: context canceled") {
		t.Fatalf("detail should name the cancellation: %q", res.Failure.Detail)
	}
	if !errors.Is(res.Err(), context.Canceled) {
		t.Fatalf("expected context.Canceled in the chain, got %v", res.Err())
	}
}

func TestExtract_UploadedBytes(t *testing.T) {
	var seen string
	r := &fakeRunner{stdout: "from upload\n"}
	r.onRun = func(_ string, args []string) error {
		seen = args[0]
		if _, err := os.Stat(seen); err != nil {
			t.Errorf("temp image should exist while tesseract runs: %v", err)
		}
		return nil
	}
	res := newTestExtractor(Config{}, r).Extract(context.Background(), Image{Name: "shot.png", Data: pngBytes(t)})
	if !res.OK() || res.Text != "from upload" {
		t.Fatalf("unexpected result %+v", res)
	}
	if filepath.Ext(seen) != ".png" {
		t.Fatalf("temp file should keep the upload extension, got %q", seen)
	}
	if _, err := os.Stat(seen); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temp image should be removed after extraction, stat err = %v", err)
	}
}

func TestExtract_ConfiguredArgs(t *testing.T) {
	path := writeFile(t, "shot.png", pngBytes(t))
	r := &fakeRunner{stdout: "x"}
	cfg := Config{Tesseract: "/opt/tess/bin/tesseract", Lang: "eng+deu", PSM: 6, OEM: 1, TessdataDir: "/data"}
	newTestExtractor(cfg, r).Extract(context.Background(), Image{Path: path})

	want := []string{"/opt/tess/bin/tesseract", path, "stdout", "-l", "eng+deu", "--psm", "6", "--oem", "1", "--tessdata-dir", "/data"}
	if len(r.calls) != 1 || !reflect.DeepEqual(r.calls[0], want) {
		t.Fatalf("calls = %v, want %v", r.calls, want)
	}
}

func TestExtract_HEICConvertedFirst(t *testing.T) {
	path := writeFile(t, "IMG_0001.HEIC", []byte("heic container"))
	pngData := pngBytes(t)
	r := &fakeRunner{stdout: "converted text"}
	r.onRun = func(name string, args []string) error {
		if name == "magick" {
			return os.WriteFile(args[len(args)-1], pngData, 0o600)
		}
		return nil
	}
	res := newTestExtractor(Config{HeicConverter: "magick"}, r).Extract(context.Background(), Image{Path: path})
	if !res.OK() || res.Text != "converted text" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(r.calls) != 2 || r.calls[0][0] != "magick" || r.calls[1][0] != "tesseract" {
		t.Fatalf("expected magick then tesseract, got %v", r.calls)
	}
	converted := r.calls[1][1]
	if filepath.Ext(converted) != ".png" {
		t.Fatalf("tesseract should read the converted png, got %q", converted)
	}
	if _, err := os.Stat(converted); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("converted png should be cleaned up")
	}
}

func TestExtract_HEICConverterMissing(t *testing.T) {
	path := writeFile(t, "IMG_0002.heic", []byte("heic container"))
	r := &fakeRunner{err: &exec.Error{Name: "heif-convert", Err: exec.ErrNotFound}}
	res := newTestExtractor(Config{HeicConverter: "heif-convert"}, r).Extract(context.Background(), Image{Path: path})
	if res.Kind() != result.BackendUnavailable {
		t.Fatalf("expected BackendUnavailable, got %s", res.Kind())
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":                              "",
		"\f":                            "",
		"Hello World\n\f":               "Hello World",
		"a  b\r\nc   \r\n":              "a  b\nc",
		"one\n\n\n\n\ntwo":              "one\n\ntwo",
		"  indented line\n  second\n\n": "indented line\n  second",
		"O1 stays as written 01\t\n":    "O1 stays as written 01",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveBinary(t *testing.T) {
	_, err := ResolveBinary(filepath.Join(t.TempDir(), "no-such-tesseract"))
	if err == nil {
		t.Fatal("expected missing binary to fail")
	}
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound cause, got %v", err)
	}

	if runtime.GOOS == "windows" {
		t.Skip("shell script executables are unix-only")
	}
	bin := filepath.Join(t.TempDir(), "tesseract")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := ResolveBinary(bin)
	if err != nil {
		t.Fatalf("ResolveBinary: %v", err)
	}
	if got != bin {
		t.Fatalf("ResolveBinary = %q, want %q", got, bin)
	}
}

func TestBoundStderr(t *testing.T) {
	short := []byte("Error in pixReadStream")
	if got := boundStderr(short); !bytes.Equal(got, short) {
		t.Fatalf("short stderr must pass through, got %q", got)
	}
	long := bytes.Repeat([]byte("e"), maxStderr*2)
	got := boundStderr(long)
	if len(got) != maxStderr+len(truncatedSuffix) || !bytes.HasSuffix(got, []byte(truncatedSuffix)) {
		t.Fatalf("expected %d bytes ending in the suffix, got %d", maxStderr+len(truncatedSuffix), len(got))
	}
	if long[maxStderr] != 'e' {
		t.Fatal("input must not be modified")
	}
}

func TestExecRunner_MissingBinary(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	_, _, err := execRunner{}.Run(context.Background(), filepath.Join(t.TempDir(), "tesseract"), logger, "x.png", "stdout")
	if err == nil {
		t.Fatal("expected an error for a missing binary")
	}
	if got := classifyExecFailure(err, nil); got != result.BackendUnavailable {
		t.Fatalf("expected BackendUnavailable, got %s (%v)", got, err)
	}
}

func TestExecRunner_StderrBounded(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs /bin/sh")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("needs /bin/sh")
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	script := `i=0; while [ $i -lt 3000 ]; do printf xxxxxxxxxx >&2; i=$((i+1)); done; exit 3`
	_, stderr, err := execRunner{}.Run(context.Background(), "/bin/sh", logger, "-c", script)
	if err == nil {
		t.Fatal("expected a non-zero exit")
	}
	if len(stderr) != maxStderr+len(truncatedSuffix) {
		t.Fatalf("expected bounded stderr, got %d bytes", len(stderr))
	}
}
