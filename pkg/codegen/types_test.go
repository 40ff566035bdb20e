package codegen

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Coordinate
		wantErr bool
	}{
		{
			name:  "group artifact version",
			input: "io.grpc:protoc-gen-grpc-java:1.62.2",
			want:  Coordinate{GroupID: "io.grpc", ArtifactID: "protoc-gen-grpc-java", Version: "1.62.2"},
		},
		{
			name:  "with type",
			input: "com.example:plugin:1.0:jar",
			want:  Coordinate{GroupID: "com.example", ArtifactID: "plugin", Version: "1.0", Type: "jar"},
		},
		{
			name:  "with classifier",
			input: "com.google.protobuf:protoc:3.25.1:exe:linux-x86_64",
			want: Coordinate{
				GroupID:    "com.google.protobuf",
				ArtifactID: "protoc",
				Version:    "3.25.1",
				Type:       "exe",
				Classifier: "linux-x86_64",
			},
		},
		{name: "too short", input: "a:b", wantErr: true},
		{name: "too long", input: "a:b:c:d:e:f", wantErr: true},
		{name: "empty segment", input: "a::c", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCoordinate(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestCoordinate_StringClassifierWithoutType(t *testing.T) {
	c := Coordinate{GroupID: "g", ArtifactID: "a", Version: "1", Classifier: "x"}
	assert.Equal(t, "g:a:1:jar:x", c.String())
}

func TestCoordinate_Validate(t *testing.T) {
	assert.NoError(t, Coordinate{GroupID: "g", ArtifactID: "a", Version: "1"}.Validate())

	err := Coordinate{GroupID: "g"}.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "artifactId, version")
}

func TestLanguageSet_Ordered(t *testing.T) {
	set := NewLanguageSet(LanguageRust, LanguagePython, LanguageJava, LanguageKotlin)
	assert.Equal(t, []Language{LanguageKotlin, LanguageJava, LanguagePython, LanguageRust}, set.Ordered())
	assert.True(t, set.Enabled(LanguageJava))
	assert.False(t, set.Enabled(LanguageCPP))
}

func TestParseLanguage(t *testing.T) {
	l, err := ParseLanguage(" Java ")
	require.NoError(t, err)
	assert.Equal(t, LanguageJava, l)
	assert.Equal(t, "--java_out", l.OutFlag())

	_, err = ParseLanguage("cobol")
	assert.ErrorIs(t, err, ErrLanguageNotSupported)
}

func TestResolutionError(t *testing.T) {
	cause := errors.New("not in repository")
	err := fmt.Errorf("plugins: %w", NewResolutionError("g:a:1", cause))

	assert.ErrorIs(t, err, ErrResolution)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "failed to resolve g:a:1: not in repository")
}
