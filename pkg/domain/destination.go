package domain

// DestKind distinguishes block-local from cross-file destinations.
type DestKind string

const (
	// DestBlock targets a block in the current file.
	DestBlock DestKind = "block"
	// DestFile targets another file; an empty Block means its entry block.
	DestFile DestKind = "file"
)

// Destination is the target of an option or jump.
type Destination struct {
	Kind  DestKind `json:"kind"`
	File  string   `json:"file,omitempty"`
	Block string   `json:"block,omitempty"`
}

// BlockRef builds a destination to a block in the current file.
func BlockRef(block string) Destination {
	return Destination{Kind: DestBlock, Block: block}
}

// FileRef builds a destination to a file, optionally naming a block.
func FileRef(file, block string) Destination {
	return Destination{Kind: DestFile, File: file, Block: block}
}

// Target resolves the file id the destination points to, using current
// for block-local references.
func (d Destination) Target(current string) (file, block string) {
	if d.Kind == DestFile {
		return d.File, d.Block
	}
	return current, d.Block
}

// String renders the destination in markup form.
func (d Destination) String() string {
	if d.Kind == DestFile {
		return d.File + ":" + d.Block
	}
	return d.Block
}
