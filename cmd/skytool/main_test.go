package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/Faultbox/skyviewer/pkg/healpix"
)

func TestRunUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	err := run("frobnicate", nil, &out)
	if !errors.Is(err, errUsage) {
		t.Fatalf("run() error = %v, want errUsage", err)
	}
}

func TestRigging(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"sphere", []string{"-nside", "4"}, []string{"Total vertices: 480", "Drawn: 48 textured strips, 0 line strips"}},
		{"mollweide", []string{"-nside", "4", "-mollweide"}, []string{"Total vertices: 496", "Drawn: 52 textured strips"}},
		{"lines", []string{"-nside", "2", "-lines", "-face", "3"}, []string{"Drawn: 0 textured strips, 4 line strips"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := run("rigging", tt.args, &out); err != nil {
				t.Fatalf("run() error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out.String(), w) {
					t.Errorf("output missing %q:\n%s", w, out.String())
				}
			}
		})
	}
}

func TestLUT(t *testing.T) {
	var out bytes.Buffer
	if err := run("lut", []string{"-nside", "8", "-ordering", "nest"}, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Texels used: 768 of 1024") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestPick(t *testing.T) {
	var out bytes.Buffer
	if err := run("pick", []string{"-o", "3,0,0", "-d", "-1,0,0", "-nside", "16"}, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	want := healpix.Ang2PixRing(16, 1.5707963267948966, 0)
	if !strings.Contains(out.String(), "Pixel:  "+strconv.Itoa(want)+" ") {
		t.Errorf("unexpected output:\n%s", out.String())
	}

	if err := run("pick", []string{"-o", "3,0,0", "-d", "1,0,0"}, &out); err == nil {
		t.Error("expected a miss for a ray pointing away")
	}
	if err := run("pick", []string{"-o", "3,0"}, &out); err == nil {
		t.Error("expected a parse error")
	}
}

func TestStats(t *testing.T) {
	var out bytes.Buffer
	if err := run("stats", []string{"-nside", "8", "-layout", "TN"}, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	s := out.String()
	if !strings.Contains(s, "layout TN") || !strings.Contains(s, "Nobs") || strings.Contains(s, "\nQ ") {
		t.Errorf("unexpected output:\n%s", s)
	}
}

func TestStatsHistogram(t *testing.T) {
	var out bytes.Buffer
	if err := run("stats", []string{"-nside", "8", "-layout", "TN", "-hist", "12"}, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	s := out.String()
	for _, want := range []string{"I histogram:", "Nobs histogram:", "|#"} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %q in output:\n%s", want, s)
		}
	}
	if n := strings.Count(s, " |"); n != 24 {
		t.Errorf("want 12 rows per field, got %d rows", n)
	}
	if !strings.Contains(s, "\n* ") {
		t.Errorf("no row marked inside the auto range:\n%s", s)
	}

	if err := run("stats", []string{"-nside", "8", "-hist", "-1"}, &out); err == nil {
		t.Error("expected an error for a negative row count")
	}
}

func TestSnapshot(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	args := []string{"-nside", "8", "-field", "P", "-format", "bmp", "-out", dir}
	if err := run("snapshot", args, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.bmp"))
	if err != nil || len(files) != 1 {
		t.Fatalf("want one bmp in %s, got %v (%v)", dir, files, err)
	}
	info, err := os.Stat(files[0])
	if err != nil || info.Size() == 0 {
		t.Errorf("snapshot file empty: %v", err)
	}
}

func TestSnapshotRejectsEmptyRange(t *testing.T) {
	var out bytes.Buffer
	err := run("snapshot", []string{"-nside", "8", "-auto=false", "-out", t.TempDir()}, &out)
	if err == nil {
		t.Error("expected an error for min == max")
	}
}

func TestConfig(t *testing.T) {
	var out bytes.Buffer
	if err := run("config", []string{"-field", "Q", "-nside", "128"}, &out); err != nil {
		t.Fatalf("config: %v", err)
	}
	for _, want := range []string{"field: Q", "nside: 128"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	path := filepath.Join(t.TempDir(), "viewer.yaml")
	out.Reset()
	if err := run("config", []string{"-mollweide", "-o", path}, &out); err != nil {
		t.Fatalf("config -o: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("saved config missing: %v", err)
	}
	if !strings.Contains(string(data), "projection: mollweide") {
		t.Errorf("saved config lacks projection:\n%s", data)
	}

	if err := run("config", []string{"-nside", "3"}, &out); err == nil {
		t.Error("expected invalid nside to be rejected")
	}
}
