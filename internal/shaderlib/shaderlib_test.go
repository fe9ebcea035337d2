package shaderlib

import (
	"strings"
	"testing"
)

func TestInject(t *testing.T) {
	lib := Source()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "no version",
			src:  "void main() {}",
			want: lib + "void main() {}",
		},
		{
			name: "version line",
			src:  "#version 410 core\nvoid main() {}",
			want: "#version 410 core\n" + lib + "void main() {}",
		},
		{
			name: "leading whitespace before version",
			src:  "\n  #version 300 es\nprecision highp float;\n",
			want: "\n  #version 300 es\n" + lib + "precision highp float;\n",
		},
		{
			name: "version without newline",
			src:  "#version 410 core",
			want: "#version 410 core\n" + lib,
		},
		{
			name: "version not first",
			src:  "// header\n#version 410 core\n",
			want: lib + "// header\n#version 410 core\n",
		},
		{
			name: "empty",
			src:  "",
			want: lib,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Inject(tt.src); got != tt.want {
				t.Errorf("Inject(%q) mismatch:\ngot  %q\nwant %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestInjectKeepsVersionFirst(t *testing.T) {
	out := Inject("#version 410 core\nvoid main() {}")
	if !strings.HasPrefix(out, "#version 410 core\n") {
		t.Fatalf("version pragma no longer first line: %q", out[:40])
	}
	if strings.Count(out, "#version") != 1 {
		t.Error("library must not carry its own version pragma")
	}
}

func TestLibraryDeclaresBlock(t *testing.T) {
	lib := Source()
	for _, want := range []string{
		"layout(std140) uniform " + BlockName,
		"float project_size(float meters)",
		"vec4 project_position(vec4 position)",
		"vec4 project_position_to_clipspace(vec3 position, vec3 offset)",
		"vec4 project_position_to_clipspace(vec3 position)",
		"COORDINATE_SYSTEM_LNG_LAT = 1.",
		"COORDINATE_SYSTEM_LNGLAT_AUTO_OFFSET = 4.",
	} {
		if !strings.Contains(lib, want) {
			t.Errorf("library missing %q", want)
		}
	}
}

// Block members must appear in the order the packer writes them.
func TestLibraryMemberOrder(t *testing.T) {
	lib := Source()
	members := []string{
		"project_uModelMatrix;",
		"project_uViewProjectionMatrix;",
		"project_uCenter;",
		"project_uPixelsPerMeter;",
		"project_uPad0;",
		"project_uCoordinateOrigin;",
		"project_uPad1;",
		"project_uPixelsPerDegree;",
		"project_uPad2;",
		"project_uPixelsPerDegree2;",
		"project_uPad3;",
		"project_uCoordinateSystem;",
		"project_uScale;",
		"project_uAntimeridian;",
		"project_uWrapLongitude;",
	}
	last := -1
	for _, m := range members {
		idx := strings.Index(lib, m)
		if idx < 0 {
			t.Fatalf("member %s not declared", m)
		}
		if idx < last {
			t.Errorf("member %s out of order", m)
		}
		last = idx
	}
}
