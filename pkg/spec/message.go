package spec

import (
	"fmt"
	"strings"
)

// TopLevel lists the records that are read and written on their own.
var TopLevel = []string{"MasterSpec", "GridPoint", "TrainTarget", "TrainingGridSpec"}

// NewMessage returns an empty record for one of the TopLevel names. Matching
// ignores case, underscores and dashes, so "grid_point" works too.
func NewMessage(name string) (Message, error) {
	key := strings.NewReplacer("_", "", "-", "").Replace(strings.ToLower(name))
	switch key {
	case "masterspec", "master", "":
		return &MasterSpec{}, nil
	case "gridpoint", "grid":
		return &GridPoint{}, nil
	case "traintarget", "target":
		return &TrainTarget{}, nil
	case "traininggridspec", "traininggrid":
		return &TrainingGridSpec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownMessage, name, strings.Join(TopLevel, ", "))
	}
}
