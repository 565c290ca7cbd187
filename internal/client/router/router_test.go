package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type rendererMock struct {
	pages []Page
}

func (m *rendererMock) RenderPage(page Page) {
	m.pages = append(m.pages, page)
}

func TestRouter_Show(t *testing.T) {
	renderer := &rendererMock{}
	r := New(renderer)

	r.Show(PageHome)
	r.Show(PageTariffs)

	// активна ровно одна страница, каждая смена отрисовывается
	assert.Equal(t, PageTariffs, r.Active())
	assert.Equal(t, []Page{PageHome, PageTariffs}, renderer.pages)
}

func TestRouter_Back(t *testing.T) {
	tests := []struct {
		name string
		from Page
		want Page
	}{
		{name: "config list returns to user detail", from: PageAdminConfigs, want: PageAdminUserDetail},
		{name: "user detail returns to user list", from: PageAdminUserDetail, want: PageAdminUsers},
		{name: "tariffs returns home", from: PageTariffs, want: PageHome},
		{name: "topup returns home", from: PageTopup, want: PageHome},
		{name: "home stays home", from: PageHome, want: PageHome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(&rendererMock{})
			r.Show(tt.from)
			r.Back()
			assert.Equal(t, tt.want, r.Active())
		})
	}
}
