package nodes

// Visitor is called for every block reached by Walk
type Visitor interface {
	Visit(block Block) interface{}
}

// BlockVisitorFunc is a function adapter for Visitor interface
type BlockVisitorFunc func(block Block) interface{}

func (f BlockVisitorFunc) Visit(block Block) interface{} {
	return f(block)
}

// Splitter turns raw template text into blocks
type Splitter func(text string) []Block

// Walk traverses blocks depth-first. The content and inverse text of block
// helpers are split with split and walked in turn; with a nil split only the
// given blocks are visited.
func Walk(visitor Visitor, blocks []Block, split Splitter) {
	for _, block := range blocks {
		if block == nil {
			continue
		}

		result := visitor.Visit(block)
		if result != nil {
			// If visitor returns non-nil, skip the block's children
			continue
		}

		helper, ok := block.(*Helper)
		if !ok || !helper.HasContent || split == nil {
			continue
		}
		Walk(visitor, split(helper.Content), split)
		Walk(visitor, split(helper.Inverse), split)
	}
}
