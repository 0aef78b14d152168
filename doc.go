// Package disklabel implements the core of a BSD disklabel editor: reading,
// validating, mutating, and writing the on-disk partitioning structure used
// by 4.4BSD-derived operating systems.
//
// The package holds only the data model and the contracts ([Context],
// [PromptService], [InfoSink], [ParentPartition]) that the rest of this
// module's packages (codec, store, geometry, partition, lifecycle,
// bootstrap) are built against. It deliberately does not implement an
// interactive CLI, a prompting UI, or MBR/DOS label parsing; those are
// external collaborators per the design documents in this repository.
package disklabel
