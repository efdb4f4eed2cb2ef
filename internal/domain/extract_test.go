package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var receivedAt = time.Date(2024, time.April, 26, 16, 20, 0, 0, time.UTC)

func TestExtractSpot(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		source Source
		want   Spot
	}{
		{
			name:   "rbn direct",
			line:   lineRBNDirect,
			source: SourceRBN,
			want: Spot{
				Source: SourceRBN, Time: ZuluTime{16, 12}, Call: "K4AHO",
				SKCCNumber: "1235", SKCCLevel: "T", Name: "Jim", Location: "FL",
				Frequency: "14059.9", Need: "Tx4",
			},
		},
		{
			name:   "rbn relayed from sked page",
			line:   lineRBNRelayed,
			source: SourceRBN,
			want: Spot{
				Source: SourceRBN, Time: ZuluTime{16, 13}, Call: "K7QB",
				SKCCNumber: "5733", SKCCLevel: "S", Name: "Bob", Location: "IN",
				Frequency: "7058.0", Need: "Tx4",
			},
		},
		{
			name:   "rbn relayed with status",
			line:   lineRBNStatus,
			source: SourceRBN,
			want: Spot{
				Source: SourceRBN, Time: ZuluTime{17, 56}, Call: "W2TJ",
				SKCCNumber: "9330", SKCCLevel: "T", Name: "Tom", Location: "NY",
				Frequency: "7116.0", Need: "Tx4", Status: "`7.116",
			},
		},
		{
			name:   "rbn with wpm",
			line:   lineRBNWPM,
			source: SourceRBN,
			want: Spot{
				Source: SourceRBN, Time: ZuluTime{16, 12}, Call: "K4AHO",
				SKCCNumber: "1235", SKCCLevel: "T", Name: "Jim", Location: "FL",
				Frequency: "14059.9", WPM: "22", Need: "Tx4",
			},
		},
		{
			name:   "sked",
			line:   lineSked,
			source: SourceSked,
			want: Spot{
				Source: SourceSked, Time: ZuluTime{16, 42}, Call: "KA3LOC",
				SKCCNumber: "660", SKCCLevel: "S", Name: "Ric", Location: "KS",
				Need: "Tx4",
			},
		},
		{
			name:   "sked with status",
			line:   lineSkedFlag,
			source: SourceSked,
			want: Spot{
				Source: SourceSked, Time: ZuluTime{16, 42}, Call: "KA2FIR",
				SKCCNumber: "3377", SKCCLevel: "T", Name: "Mike", Location: "NJ",
				Need: "Tx4", Status: "Need AK on 80M for #50 on LOTW, etc. prop.kc2g.com",
			},
		},
		{
			name:   "sked drops they-need segment",
			line:   lineSkedFull,
			source: SourceSked,
			want: Spot{
				Source: SourceSked, Time: ZuluTime{16, 12}, Call: "AB4PP",
				SKCCNumber: "32", SKCCLevel: "S", Name: "John-Paul", Location: "NC",
				Need: "BRAG,C,T,WAS,WAS-C,WAS-T,WAS-S,P(new +32)", Status: "looking for /AF& OC",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractSpot(tt.line, tt.source, receivedAt)
			require.NoError(t, err)

			assert.Equal(t, tt.line, got.Raw)
			assert.Equal(t, receivedAt, got.ReceivedAt)
			if diff := cmp.Diff(tt.want, got, cmpopts.IgnoreFields(Spot{}, "Raw", "ReceivedAt")); diff != "" {
				t.Errorf("ExtractSpot() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractSpot_SkedIgnoresFrequencyColumn(t *testing.T) {
	got, err := ExtractSpot(lineSked, SourceSked, receivedAt)
	require.NoError(t, err)
	assert.Empty(t, got.Frequency)
	assert.Empty(t, got.WPM)
}

func TestExtractSpot_ShortLines(t *testing.T) {
	t.Run("time and partial call", func(t *testing.T) {
		got, err := ExtractSpot("1612Z+K4A", SourceRBN, receivedAt)
		require.NoError(t, err)
		assert.Equal(t, "K4A", got.Call)
		assert.Empty(t, got.SKCCNumber)
		assert.Empty(t, got.SKCCLevel)
		assert.Empty(t, got.Name)
		assert.Empty(t, got.Location)
		assert.Empty(t, got.Frequency)
	})

	t.Run("cut inside location", func(t *testing.T) {
		got, err := ExtractSpot("1642Z KA3LOC (  660 Sx6  Ric        K", SourceSked, receivedAt)
		require.NoError(t, err)
		assert.Equal(t, "Ric", got.Name)
		assert.Equal(t, "K", got.Location)
	})

	t.Run("relayed line without ago marker", func(t *testing.T) {
		got, err := ExtractSpot("1613Z+K7QB   ( 5733 S    Bob        IN); Last spotted on", SourceRBN, receivedAt)
		require.NoError(t, err)
		assert.Empty(t, got.Frequency)
	})

	t.Run("relayed line without trailing separator", func(t *testing.T) {
		got, err := ExtractSpot("1613Z+K7QB   ( 5733 S    Bob        IN); Last spotted 2 minutes ago on 7058.0", SourceRBN, receivedAt)
		require.NoError(t, err)
		assert.Equal(t, "7058.0", got.Frequency)
	})
}

func TestExtractSpot_PaddedWPM(t *testing.T) {
	line := "1612Z+K4AHO  ( 1235 T    Jim        FL) on  14059.9 by W3RGA(660mi, 11dB) ( 22 WPM); YOU need them for Tx4"
	got, err := ExtractSpot(line, SourceRBN, receivedAt)
	require.NoError(t, err)
	assert.Equal(t, "22", got.WPM)
	assert.Equal(t, "       14059.9 (22 WPM)", got.Detail())
}

func TestExtractSpot_InvalidTime(t *testing.T) {
	for _, line := range []string{"", "12", "AB12Z+K4AHO", "2512Z+K4AHO", "1275Z+K4AHO"} {
		_, err := ExtractSpot(line, SourceRBN, receivedAt)
		require.ErrorIs(t, err, ErrInvalidTime, line)
	}
}

func TestParseZulu(t *testing.T) {
	tests := []struct {
		in      string
		want    ZuluTime
		wantErr bool
	}{
		{"1612Z", ZuluTime{16, 12}, false},
		{"0000Z", ZuluTime{0, 0}, false},
		{"2359", ZuluTime{23, 59}, false},
		{"2400Z", ZuluTime{}, true},
		{"1260Z", ZuluTime{}, true},
		{"161Z", ZuluTime{}, true},
		{"-112Z", ZuluTime{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseZulu(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in[:4]+"Z", got.String())
		})
	}
}

func TestSpot_Presentation(t *testing.T) {
	rbn := Spot{Source: SourceRBN, SKCCNumber: "1235", SKCCLevel: "T", Frequency: "14059.9"}
	assert.Equal(t, "1235 T", rbn.SKCC())
	assert.Equal(t, "14059.9", rbn.Detail())

	rbn.WPM = "22"
	assert.Equal(t, "       14059.9 (22 WPM)", rbn.Detail())

	sked := Spot{Source: SourceSked, Status: "QRV 40m"}
	assert.Equal(t, "QRV 40m", sked.Detail())

	assert.Equal(t, "SKED", SourceSked.String())
	text, err := SourceRBN.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "RBN", string(text))
}

func TestSource_UnmarshalText(t *testing.T) {
	var s Source
	require.NoError(t, s.UnmarshalText([]byte("SKED")))
	assert.Equal(t, SourceSked, s)
	require.NoError(t, s.UnmarshalText([]byte("RBN")))
	assert.Equal(t, SourceRBN, s)
	assert.Error(t, s.UnmarshalText([]byte("DX")))
}
