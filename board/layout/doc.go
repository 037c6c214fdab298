// Package layout provides the catalogue of preset boards.
//
// The layout package handles:
//   - Loading board layouts from JSON files
//   - Layout validation
//   - Default layout selection
//   - Layout discovery and listing
//
// Layout Format:
//
// Layouts are stored as JSON files in the layouts directory. Each file
// defines a name, a description, the side length and one string per row
// using the grid legend (. empty, # wall, S start, E end):
//
//	{
//	  "name": "Corridor",
//	  "description": "A single winding corridor",
//	  "size": 5,
//	  "layout": ["S....", "####.", ".....", ".####", "....E"]
//	}
//
// Usage:
//
//	manager, err := layout.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	l, err := manager.Load("maze")
//	if err != nil {
//		log.Fatal(err)
//	}
//	g, err := l.Grid()
//
// The catalogue is read-only; boards edited at runtime are never written back.
package layout
