package aggregate

import (
	"github.com/lodprobe/lodprobe/internal/model"
)

// SelectDominant picks the dataset's dominant host: the hostname with
// the highest occurrence count, with ties resolved to the
// lexicographically smallest hostname so that results are deterministic
// across runs. The dominant host is removed from the returned
// ReferencedHosts map.
//
// The second return value is false when the analysis observed no hosts
// at all; such datasets have no provider and are skipped by Merge.
func SelectDominant(analysis model.DatasetAnalysis) (model.ProcessedDataset, bool) {
	var dominant string
	best := -1
	for host, count := range analysis.HostOccurrences {
		if count > best || (count == best && host < dominant) {
			dominant = host
			best = count
		}
	}
	if best < 0 {
		return model.ProcessedDataset{}, false
	}

	referenced := make(map[string]int, len(analysis.HostOccurrences)-1)
	for host, count := range analysis.HostOccurrences {
		if host != dominant {
			referenced[host] = count
		}
	}

	return model.ProcessedDataset{
		MostOccurringHost: dominant,
		Provenance:        analysis.Dataset.Provenance(),
		ReferencedHosts:   referenced,
	}, true
}

// Merge reduces per-dataset analyses into a mapping from dominant host
// to merged provider record. Datasets sharing a dominant host are
// accumulated into one entry: triple counts sum, referenced-host counts
// sum element-wise, and provenance records append in input order.
//
// The count and sum accumulation is commutative and associative, so
// the final numbers do not depend on input order; only the provenance
// ordering reflects it.
func Merge(analyses []model.DatasetAnalysis) map[string]*model.MergedProvider {
	providers := make(map[string]*model.MergedProvider)

	for _, analysis := range analyses {
		processed, ok := SelectDominant(analysis)
		if !ok {
			continue
		}

		entry, exists := providers[processed.MostOccurringHost]
		if !exists {
			referenced := make(map[string]int, len(processed.ReferencedHosts))
			for host, count := range processed.ReferencedHosts {
				referenced[host] = count
			}
			providers[processed.MostOccurringHost] = &model.MergedProvider{
				Triples:         processed.Provenance.DeclaredTriples,
				Provenance:      []model.Provenance{processed.Provenance},
				ReferencedHosts: referenced,
			}
			continue
		}

		entry.Triples += processed.Provenance.DeclaredTriples
		entry.Provenance = append(entry.Provenance, processed.Provenance)
		for host, count := range processed.ReferencedHosts {
			entry.ReferencedHosts[host] += count
		}
	}

	return providers
}
