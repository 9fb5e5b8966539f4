package origins

import (
	"net/netip"
	"strconv"
	"strings"
	"sync"

	"github.com/jcrtools/httpx/cfgerrors"
	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// Kind represents the kind of a host pattern.
type Kind uint8

const (
	Domain              Kind = iota // exact domain
	ArbitrarySubdomains             // arbitrary subdomains of a domain
	NonLoopbackIP                   // non-loopback IP address
	LoopbackIP                      // loopback IP address
)

const (
	absentPort = 0
	// arbitraryPort is a sentinel value that subsumes all other port numbers.
	arbitraryPort = -1
)

// A Pattern represents an origin pattern.
// The zero value does not correspond to a valid pattern.
type Pattern struct {
	// Scheme is the scheme of this origin pattern.
	Scheme string
	// HostPattern is the host pattern of this origin pattern,
	// including the leading *. sequence (if any)
	// but excluding the brackets around an IPv6 address.
	HostPattern string
	// Port is the positive port number (if any) of this origin pattern.
	// The zero value marks the absence of an explicit port.
	// -1 is used as a sentinel value to indicate that all ports are allowed.
	Port int
	// Kind is the kind of this origin pattern's host pattern.
	Kind Kind
}

// ParsePattern parses str into a fully valid [Pattern] structure.
// If it fails, it returns a non-nil error and some invalid pattern.
// Note that origin pattern "*" is handled elsewhere.
func ParsePattern(str string) (p Pattern, err error) {
	// As a defensive measure against maliciously long origin patterns,
	// let's first check the length of str.
	if len(str) > maxPatternLen {
		return p, invalidOriginPatternError(str)
	}
	if str == "null" {
		return p, prohibitedOriginPatternError(str)
	}
	var (
		rest string
		ok   bool
	)
	p.Scheme, rest, ok = parseScheme(str)
	if !ok {
		return p, invalidOriginPatternError(str)
	}
	if p.Scheme == "file" {
		return p, prohibitedOriginPatternError(str)
	}
	rest, ok = strings.CutPrefix(rest, schemeHostSep)
	if !ok {
		return p, invalidOriginPatternError(str)
	}
	p.HostPattern, p.Kind, rest, err = parseHostPattern(rest, str)
	if err != nil {
		return p, err
	}
	if rest != "" {
		rest, ok = strings.CutPrefix(rest, string(hostPortSep))
		if !ok {
			return p, invalidOriginPatternError(str)
		}
		if rest == portWildcard {
			p.Port = arbitraryPort
		} else if p.Port, ok = parsePort(rest); !ok {
			return p, invalidOriginPatternError(str)
		}
		if isDefaultPortForScheme(p.Scheme, p.Port) {
			return p, prohibitedOriginPatternError(str)
		}
	}
	return p, nil
}

func prohibitedOriginPatternError(pattern string) error {
	return &cfgerrors.UnacceptableOriginPatternError{
		Value:  pattern,
		Reason: "prohibited",
	}
}

func invalidOriginPatternError(pattern string) error {
	return &cfgerrors.UnacceptableOriginPatternError{
		Value:  pattern,
		Reason: "invalid",
	}
}

// parseHostPattern scans and validates a host pattern in str.
// If it succeeds, it returns the host pattern, its kind, the unconsumed part
// of str, and nil; otherwise, its err result is some non-nil error.
func parseHostPattern(str, raw string) (hostPattern string, kind Kind, rest string, err error) {
	var assumeIP bool
	if str != "" && str[0] == '[' { // str must be an IPv6 address.
		var ok bool
		hostPattern, rest, ok = strings.Cut(str[1:], "]")
		if !ok {
			err = invalidOriginPatternError(raw)
			return
		}
		assumeIP = true
	} else { // str must be either an IPv4 address or a domain pattern.
		host, wildcardSubs := strings.CutPrefix(str, wildcardSeq)
		i := 0
		for ; i < len(host) && isDomainByte(host[i]); i++ {
			// deliberately empty body
		}
		if i == 0 || host[0] == labelSep {
			err = invalidOriginPatternError(raw)
			return
		}
		hostPattern, rest = str[:len(str)-len(host)+i], host[i:]
		if wildcardSubs {
			kind = ArbitrarySubdomains
		}
		// If the rightmost label starts with a digit, assume an IPv4
		// address, since no TLD starts with a digit.
		label := rightmostLabel(host[:i])
		if label == "" {
			err = invalidOriginPatternError(raw)
			return
		}
		assumeIP = isDigit(label[0])
		if assumeIP && wildcardSubs {
			err = invalidOriginPatternError(raw)
			return
		}
	}
	if assumeIP {
		ip, perr := netip.ParseAddr(hostPattern)
		if perr != nil || ip.Zone() != "" {
			err = invalidOriginPatternError(raw)
			return
		}
		if ip.Is4In6() || hostPattern != ip.String() {
			err = prohibitedOriginPatternError(raw)
			return
		}
		if ip.IsLoopback() {
			kind = LoopbackIP
		} else {
			kind = NonLoopbackIP
		}
		return hostPattern, kind, rest, nil
	}
	profileOnce.Do(initProfile)
	if _, perr := profile.ToASCII(strings.TrimPrefix(hostPattern, wildcardSeq)); perr != nil {
		err = prohibitedOriginPatternError(raw)
		return
	}
	return hostPattern, kind, rest, nil
}

// rightmostLabel returns the rightmost non-empty DNS label of host,
// tolerating a single trailing period (absolute domain).
func rightmostLabel(host string) string {
	host = strings.TrimSuffix(host, string(labelSep))
	if i := strings.LastIndexByte(host, labelSep); i >= 0 {
		return host[i+1:]
	}
	return host
}

var (
	profileOnce sync.Once     // guards init of profile via initProfile
	profile     *idna.Profile // lazily initialized
)

func initProfile() {
	profile = idna.New(
		idna.BidiRule(),
		idna.ValidateLabels(true),
		idna.StrictDomainName(true),
		idna.VerifyDNSLength(true),
	)
}

// isDefaultPortForScheme returns true for the following combinations
//   - (https, 443)
//   - (http, 80)
//
// and false otherwise.
func isDefaultPortForScheme(scheme string, port int) bool {
	return port == 80 && scheme == "http" ||
		port == 443 && scheme == "https"
}

// HostIsEffectiveTLD reports whether p's host is an effective top-level
// domain (eTLD), also known as [public suffix].
//
// [public suffix]: https://publicsuffix.org/list/
func (p *Pattern) HostIsEffectiveTLD() bool {
	host := strings.TrimPrefix(p.HostPattern, wildcardSeq)
	host = strings.TrimSuffix(host, string(labelSep))
	// We ignore the second (boolean) result because
	// it's false for some listed eTLDs (e.g. github.io).
	etld, _ := publicsuffix.PublicSuffix(host)
	return etld == host
}

// Matches reports whether p encompasses o.
func (p *Pattern) Matches(o *Origin) bool {
	if p.Scheme != o.Scheme {
		return false
	}
	if p.Port != arbitraryPort && p.Port != o.Port {
		return false
	}
	if p.Kind != ArbitrarySubdomains {
		return p.HostPattern == o.Host
	}
	// Keep the leading period so that "*.example.com" does not
	// encompass "https://notexample.com" or "https://example.com".
	suffix := p.HostPattern[len(subdomainWildcard):]
	return len(o.Host) > len(suffix) && strings.HasSuffix(o.Host, suffix)
}

// String returns the textual representation of p.
func (p *Pattern) String() string {
	var sb strings.Builder
	sb.WriteString(p.Scheme)
	sb.WriteString(schemeHostSep)
	if p.Kind == LoopbackIP || p.Kind == NonLoopbackIP {
		if strings.IndexByte(p.HostPattern, ':') >= 0 {
			sb.WriteByte('[')
			sb.WriteString(p.HostPattern)
			sb.WriteByte(']')
		} else {
			sb.WriteString(p.HostPattern)
		}
	} else {
		sb.WriteString(p.HostPattern)
	}
	switch p.Port {
	case absentPort:
	case arbitraryPort:
		sb.WriteByte(hostPortSep)
		sb.WriteString(portWildcard)
	default:
		sb.WriteByte(hostPortSep)
		sb.WriteString(strconv.Itoa(p.Port))
	}
	return sb.String()
}
