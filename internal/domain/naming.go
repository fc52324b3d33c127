package domain

import m "ftqmap.dev/pkg/ftqmap/internal/model"

var (
	imageSidecar   = []string{".nii.gz", ".json"}
	diffusionFiles = []string{".nii.gz", ".json", ".bval", ".bvec"}
)

// DefaultNamingTable returns the ABCD fast-track series-types and the BIDS
// names their conversion produces.
func DefaultNamingTable() m.NamingTable {
	return m.NewNamingTable(
		m.SeriesTemplate{SeriesType: "ABCD-T1", Bucket: m.BucketAnat, Suffix: "T1w", Extensions: imageSidecar},
		m.SeriesTemplate{SeriesType: "ABCD-T1-NORM", Bucket: m.BucketAnat, Entity: "rec-normalized", Suffix: "T1w", Extensions: imageSidecar},
		m.SeriesTemplate{SeriesType: "ABCD-T2", Bucket: m.BucketAnat, Suffix: "T2w", Extensions: imageSidecar},
		m.SeriesTemplate{SeriesType: "ABCD-T2-NORM", Bucket: m.BucketAnat, Entity: "rec-normalized", Suffix: "T2w", Extensions: imageSidecar},
		m.SeriesTemplate{SeriesType: "ABCD-DTI", Bucket: m.BucketDWI, Suffix: "dwi", Extensions: diffusionFiles},
		m.SeriesTemplate{SeriesType: "ABCD-MID-fMRI", Bucket: m.BucketFunc, Entity: "task-MID", Suffix: "bold", Extensions: imageSidecar},
		m.SeriesTemplate{SeriesType: "ABCD-nBack-fMRI", Bucket: m.BucketFunc, Entity: "task-nback", Suffix: "bold", Extensions: imageSidecar},
		m.SeriesTemplate{SeriesType: "ABCD-SST-fMRI", Bucket: m.BucketFunc, Entity: "task-SST", Suffix: "bold", Extensions: imageSidecar},
		m.SeriesTemplate{SeriesType: "ABCD-rsfMRI", Bucket: m.BucketFunc, Entity: "task-rest", Suffix: "bold", Extensions: imageSidecar},
	)
}
