// Package spritesheet provides data structures and parsers for sprite sheet
// frame-data files.
//
// A frame-data file lists, per animation, the rectangles of its frames
// inside one atlas image. Like the animation files it is modelled on, it
// has no root element:
//
//	<image>fire_dragon.png</image>
//	<anim><name>idle</name>
//	  <t><x>0</x><y>0</y><w>64</w><h>64</h></t>
//	  <t/>
//	</anim>
package spritesheet

// Sheet is the root structure of a frame-data file.
type Sheet struct {
	// Image is the atlas image path, relative to the frame-data file
	Image string `xml:"image,omitempty"`

	// Width and Height are optional; when set they are checked against the
	// decoded image by the atlas loader.
	Width  int `xml:"width,omitempty"`
	Height int `xml:"height,omitempty"`

	Animations []Animation `xml:"anim"`
}

// Animation is the ordered frame list of one animation.
type Animation struct {
	// Name matches the animation key in the pet catalog, e.g. "idle", "attack"
	Name string `xml:"name"`

	Frames []Frame `xml:"t"`
}

// Frame is one rectangle. All fields are optional. A missing field is
// inherited from the previous frame of the same animation, except X, which
// steps one frame width to the right. The first frame defaults to zero.
type Frame struct {
	X *int `xml:"x,omitempty"`
	Y *int `xml:"y,omitempty"`

	// W and H are the frame size in pixels
	W *int `xml:"w,omitempty"`
	H *int `xml:"h,omitempty"`

	// D is the authored frame duration in milliseconds
	D *int `xml:"d,omitempty"`
}
