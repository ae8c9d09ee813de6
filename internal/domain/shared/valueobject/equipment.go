package valueobject

// ContainerSize represents the nominal length/height class of a container
type ContainerSize string

const (
	Size20ST ContainerSize = "20ST" // 20ft standard
	Size40ST ContainerSize = "40ST" // 40ft standard
	Size40HC ContainerSize = "40HC" // 40ft high cube
	Size45HC ContainerSize = "45HC" // 45ft high cube
)

// IsValid checks if the size is a recognized ContainerSize
func (s ContainerSize) IsValid() bool {
	switch s {
	case Size20ST, Size40ST, Size40HC, Size45HC:
		return true
	}
	return false
}

// String returns the string representation of ContainerSize
func (s ContainerSize) String() string {
	return string(s)
}

// ContainerType represents the construction/usage type of a container
type ContainerType string

const (
	TypeDry      ContainerType = "DRY"
	TypeReefer   ContainerType = "REEFER"
	TypeOpenTop  ContainerType = "OPEN_TOP"
	TypeFlatRack ContainerType = "FLAT_RACK"
	TypeTank     ContainerType = "TANK"
)

// IsValid checks if the type is a recognized ContainerType
func (t ContainerType) IsValid() bool {
	switch t {
	case TypeDry, TypeReefer, TypeOpenTop, TypeFlatRack, TypeTank:
		return true
	}
	return false
}

// String returns the string representation of ContainerType
func (t ContainerType) String() string {
	return string(t)
}
