package cmd

import (
	"testing"

	cfgpkg "github.com/emilcphu/dtu-intro-to-ml-dm/internal/config"
)

func TestInputFlagsReadOptions(t *testing.T) {
	c := cfgpkg.Default()
	f := inputFlags{delimiter: "tab", decimal: "comma", thousands: "space"}
	opt, err := f.readOptions(c)
	if err != nil {
		t.Fatalf("readOptions: %v", err)
	}
	if opt.Delimiter != '\t' || opt.DecimalSeparator != ',' || opt.ThousandsSeparator != ' ' {
		t.Errorf("unexpected options: %+v", opt)
	}

	c.Delimiter = ";"
	opt, err = (&inputFlags{}).readOptions(c)
	if err != nil {
		t.Fatalf("readOptions from config: %v", err)
	}
	if opt.Delimiter != ';' {
		t.Errorf("config delimiter not applied: %q", opt.Delimiter)
	}

	if _, err := (&inputFlags{decimal: "x"}).readOptions(cfgpkg.Default()); err == nil {
		t.Errorf("expected error for bad decimal")
	}
}

func TestPipelineOptionsFromConfig(t *testing.T) {
	c := cfgpkg.Default()
	c.Encodings[0].Rule = "one-hot"
	opt, err := pipelineOptions(c)
	if err != nil {
		t.Fatalf("pipelineOptions: %v", err)
	}
	if opt.Clean.Encodings[0].Rule != "onehot" {
		t.Errorf("rule not normalized: %q", opt.Clean.Encodings[0].Rule)
	}
	if len(opt.Methods) != 4 || opt.K != 2 || opt.Label != "chd" {
		t.Errorf("unexpected options: %+v", opt)
	}
}

func TestExpandMethods(t *testing.T) {
	got := expandMethods([]string{"ward", "ALL"})
	if len(got) != 4 || got[0] != "single" {
		t.Errorf("expandMethods(all) = %v", got)
	}
	got = expandMethods([]string{"ward"})
	if len(got) != 1 || got[0] != "ward" {
		t.Errorf("expandMethods(ward) = %v", got)
	}
}
