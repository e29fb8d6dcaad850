package domain

type NetworkInput struct {
	Address string
	Prefix  int
}

type AggregateInput struct {
	Networks []NetworkInput
}
