package mobbr

type InfoResp struct {
	Result struct {
		Script Script `json:"script"`
	} `json:"result"`
}
