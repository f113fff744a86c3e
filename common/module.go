package common

type Module string

const (
	ModuleEditions Module = "editions"
)

func (m Module) String() string {
	return string(m)
}
