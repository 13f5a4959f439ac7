package stations

import "trainmap.dev/internal/models"

// Directional suffixes used by the realtime feed on stop identifiers.
var directionSuffixes = [...]string{"N", "S"}

func hasDirectionSuffix(id string) bool {
	if id == "" {
		return false
	}
	last := id[len(id)-1]
	return last == 'N' || last == 'S'
}

// expandSuffixes builds the directory key set from the table rows.
//
// Every row is registered under its own identifier. A row whose identifier
// has no directional suffix is also registered under identifier+"N" and
// identifier+"S", carrying the same name and coordinates. A synthetic key
// never replaces a row that the table lists explicitly, whatever the row
// order. When the table repeats an identifier the last row wins.
func expandSuffixes(rows []models.Station) map[string]models.Station {
	explicit := make(map[string]models.Station, len(rows))
	for _, row := range rows {
		explicit[row.ID] = row
	}

	keys := make(map[string]models.Station, len(explicit)*3)
	for id, row := range explicit {
		keys[id] = row
	}
	for id, row := range explicit {
		if hasDirectionSuffix(id) {
			continue
		}
		for _, suffix := range directionSuffixes {
			key := id + suffix
			if _, listed := explicit[key]; listed {
				continue
			}
			variant := row
			variant.ID = key
			keys[key] = variant
		}
	}
	return keys
}
