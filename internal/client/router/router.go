// Package router реализует переключение экранов мини-аппа. Набор
// страниц фиксирован, активна ровно одна; возврат с каждой страницы
// ведёт на жёстко заданную цель, универсального стека истории нет.
package router

// Page идентификатор экрана.
type Page string

// Полный набор страниц приложения.
const (
	PageHome            Page = "home"
	PageTariffs         Page = "tariffs"
	PageTopup           Page = "topup"
	PageInvite          Page = "invite"
	PageNoHost          Page = "nohost"
	PageFatal           Page = "fatal"
	PageAdminUsers      Page = "admin_users"
	PageAdminUserDetail Page = "admin_user_detail"
	PageAdminConfigs    Page = "admin_configs"
)

// backTargets цель возврата для каждой страницы. Страницы без записи
// возвращают на главную.
var backTargets = map[Page]Page{
	PageAdminUserDetail: PageAdminUsers,
	PageAdminConfigs:    PageAdminUserDetail,
}

// Renderer показывает страницу. Реализация отвечает за то, чтобы
// предыдущая страница была скрыта.
type Renderer interface {
	RenderPage(page Page)
}

// Router хранит активную страницу и уведомляет Renderer о переходах.
type Router struct {
	renderer Renderer
	active   Page
}

// New создает Router. До первого Show активная страница пуста.
func New(renderer Renderer) *Router {
	return &Router{renderer: renderer}
}

// Show делает страницу активной и отрисовывает её.
func (r *Router) Show(page Page) {
	r.active = page
	r.renderer.RenderPage(page)
}

// Active возвращает текущую активную страницу.
func (r *Router) Active() Page {
	return r.active
}

// Back переходит на жёстко заданную цель возврата активной страницы.
func (r *Router) Back() {
	target, ok := backTargets[r.active]
	if !ok {
		target = PageHome
	}
	r.Show(target)
}
