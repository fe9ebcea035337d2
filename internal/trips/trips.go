// Package trips decodes the cabspotting taxi trace format and turns it into
// trips for the demo layers.
//
// The file is a flat stream of little-endian float32 values. Each cab record
// is its id and a point count, followed by that many points of
// [minutesOfWeek, occupied, lng, lat].
package trips

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/Faultbox/mapgl/internal/logger"
)

const (
	minutesPerDay = 24 * 60
	// Minutes of week start on Monday; the first five days are weekdays.
	weekdayMinutes = 5 * minutesPerDay
)

// ErrTruncated is returned when a record ends before its declared length.
var ErrTruncated = errors.New("trips: truncated record")

// Trip is a run of consecutive points of one cab with the same occupancy.
type Trip struct {
	CabID    int
	Occupied bool
	// MinutesOfDay and IsWeekday describe the trip's first point.
	MinutesOfDay float64
	IsWeekday    bool
	Path         orb.LineString
}

// Start returns the first point of the trip.
func (t Trip) Start() orb.Point {
	return t.Path[0]
}

// Decode reads every cab record from r and splits it into trips. A new trip
// starts whenever the cab or the occupancy changes.
func Decode(r io.Reader) ([]Trip, error) {
	br := bufio.NewReader(r)
	var trips []Trip
	var point [4]float32

	for record := 0; ; record++ {
		var header [2]float32
		if err := binary.Read(br, binary.LittleEndian, &header); err != nil {
			if errors.Is(err, io.EOF) {
				return trips, nil
			}
			return nil, fmt.Errorf("record %d header: %w", record, truncated(err))
		}

		cab, n := header[0], header[1]
		if n < 0 || n != float32(math.Trunc(float64(n))) {
			return nil, fmt.Errorf("record %d: invalid path length %v", record, n)
		}

		for i := 0; i < int(n); i++ {
			if err := binary.Read(br, binary.LittleEndian, &point); err != nil {
				return nil, fmt.Errorf("record %d point %d: %w", record, i, truncated(err))
			}
			minutesOfWeek := float64(point[0])
			occupied := point[1] == 1
			pos := orb.Point{float64(point[2]), float64(point[3])}

			last := len(trips) - 1
			if last < 0 || trips[last].CabID != int(cab) || trips[last].Occupied != occupied {
				trips = append(trips, Trip{
					CabID:        int(cab),
					Occupied:     occupied,
					MinutesOfDay: math.Mod(minutesOfWeek, minutesPerDay),
					IsWeekday:    minutesOfWeek < weekdayMinutes,
				})
				last++
			}
			trips[last].Path = append(trips[last].Path, pos)
		}
	}
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}

// Load decodes the file at path. ctx is checked before the read starts.
func Load(ctx context.Context, path string) ([]Trip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trips: %w", err)
	}
	defer f.Close()

	trips, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	logger.Info("trips loaded", zap.String("path", path), zap.Int("trips", len(trips)))
	return trips, nil
}

// Occupied keeps occupied trips, each with probability rate. A rate of 1 or
// more keeps all of them; rng may be nil then.
func Occupied(trips []Trip, rate float64, rng *rand.Rand) []Trip {
	var out []Trip
	for _, t := range trips {
		if !t.Occupied {
			continue
		}
		if rate < 1 && rng.Float64() >= rate {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Positions returns the start point of every trip as [lng, lat] pairs.
func Positions(trips []Trip) []float32 {
	out := make([]float32, 0, len(trips)*2)
	for _, t := range trips {
		p := t.Start()
		out = append(out, float32(p.Lon()), float32(p.Lat()))
	}
	return out
}

// Bound returns the extent of all trip paths.
func Bound(trips []Trip) orb.Bound {
	if len(trips) == 0 {
		return orb.Bound{}
	}
	b := trips[0].Path.Bound()
	for _, t := range trips[1:] {
		b = b.Union(t.Path.Bound())
	}
	return b
}
