package mot

import "strconv"

// DefaultClasses is the label set of the hardware-component detector the
// tracker was first tuned for. Index 0 is the background class.
var DefaultClasses = []string{
	"background",
	"led",
	"ethernet port",
	"ethernet plug",
	"power port",
	"power plug",
	"antenna",
	"usb port",
	"usb plug",
	"button",
}

// ClassLabel maps a class index to its name in classes. Unknown indices are
// rendered as "class_<n>".
func ClassLabel(classes []string, index int) string {
	if index >= 0 && index < len(classes) {
		return classes[index]
	}
	return "class_" + strconv.Itoa(index)
}
